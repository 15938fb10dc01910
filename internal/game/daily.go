package game

import (
	"context"
	"time"

	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

// utcDay truncates to the UTC calendar day. Streak math is day-based, not
// 24h-window based: claiming at 23:59 and again at 00:01 counts as two days.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextStreak is the streak value a claim right now would produce.
func (e Engine) nextStreak(p state.Player, now time.Time) int {
	if p.LastDaily == nil {
		return 1
	}
	last := utcDay(*p.LastDaily)
	today := utcDay(now)
	if last.Equal(today.AddDate(0, 0, -1)) {
		return p.DailyStreak + 1
	}
	if last.Equal(today) {
		return p.DailyStreak
	}
	return 1
}

// dailyStatus reports claimability and, when already claimed, the next
// eligible instant (next UTC midnight).
func (e Engine) dailyStatus(p state.Player, now time.Time) (ready bool, nextAt *time.Time) {
	if p.LastDaily == nil || !utcDay(*p.LastDaily).Equal(utcDay(now)) {
		return true, nil
	}
	next := utcDay(now).AddDate(0, 0, 1)
	return false, &next
}

type DailyClaimResult struct {
	Coins      int     `json:"coins_gained"`
	Multiplier float64 `json:"multiplier"`
	Streak     int     `json:"streak"`
	BestStreak int     `json:"best_streak"`
	Balance    int     `json:"coins"`
}

// ClaimDaily opens the daily chest: once per UTC day, base coins scaled by
// the streak tier. A claim on the day after the previous one extends the
// streak; any gap resets it to 1.
func (e Engine) ClaimDaily(ctx context.Context, playerID int64) (DailyClaimResult, error) {
	var res DailyClaimResult
	now := e.Clock.Now()

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		ready, nextAt := e.dailyStatus(s.Player, now)
		if !ready {
			return &Error{
				Code:           CodeAlreadyClaimed,
				Message:        "daily chest already opened today",
				NextEligibleAt: nextAt,
			}
		}

		streak := e.nextStreak(s.Player, now)
		mult := e.Content.DailyMultiplier(streak)
		coins := roundCoins(float64(e.Content.Daily.BaseRewardCoins) * mult)

		claimedAt := now.UTC()
		s.Player.LastDaily = &claimedAt
		s.Player.DailyStreak = streak
		if streak > s.Player.BestStreak {
			s.Player.BestStreak = streak
		}
		s.Player.Coins += coins

		res = DailyClaimResult{
			Coins:      coins,
			Multiplier: mult,
			Streak:     streak,
			BestStreak: s.Player.BestStreak,
			Balance:    s.Player.Coins,
		}
		return nil
	})
	if err != nil {
		return DailyClaimResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventDailyClaimed, telemetry.EventMetadata{
		"player": playerID,
		"coins":  res.Coins,
		"streak": res.Streak,
	})
	return res, nil
}

type DailyStatus struct {
	Ready          bool       `json:"ready"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
	Streak         int        `json:"streak"`
	BestStreak     int        `json:"best_streak"`
	NextMultiplier float64    `json:"next_multiplier"`
	NextCoins      int        `json:"next_coins"`
}

// Daily reports the chest state without claiming.
func (e Engine) Daily(ctx context.Context, playerID int64) (DailyStatus, error) {
	ps, err := e.State.Get(ctx, playerID)
	if err != nil {
		return DailyStatus{}, translateStateErr(err)
	}
	now := e.Clock.Now()
	ready, nextAt := e.dailyStatus(ps.Player, now)
	streak := e.nextStreak(ps.Player, now)
	if !ready {
		// Already claimed today, so the next claim lands tomorrow and
		// extends the streak.
		streak = ps.Player.DailyStreak + 1
	}
	mult := e.Content.DailyMultiplier(streak)
	return DailyStatus{
		Ready:          ready,
		NextEligibleAt: nextAt,
		Streak:         ps.Player.DailyStreak,
		BestStreak:     ps.Player.BestStreak,
		NextMultiplier: mult,
		NextCoins:      roundCoins(float64(e.Content.Daily.BaseRewardCoins) * mult),
	}, nil
}
