package game

import (
	"context"
	"time"

	"github.com/ReC82/LodyLand/internal/state"
)

type TileView struct {
	ID               int        `json:"id"`
	Resource         string     `json:"resource"`
	Land             string     `json:"land,omitempty"`
	CooldownUntil    *time.Time `json:"cooldown_until,omitempty"`
	CooldownSecsLeft float64    `json:"cooldown_seconds_left"`
	Ready            bool       `json:"ready"`
}

type JobView struct {
	ID        string    `json:"id"`
	ItemKey   string    `json:"item_key"`
	OutputQty int       `json:"output_qty"`
	StartedAt time.Time `json:"started_at"`
	ReadyAt   time.Time `json:"ready_at"`
	Status    string    `json:"status"`
}

type StateView struct {
	Player        state.Player       `json:"player"`
	NextLevelXP   *float64           `json:"next_level_xp,omitempty"`
	TileCapacity  int                `json:"tile_capacity"`
	Tiles         []TileView         `json:"tiles"`
	Stocks        map[string]float64 `json:"stocks"`
	Items         map[string]int     `json:"items"`
	Cards         map[string]int     `json:"cards"`
	Jobs          []JobView          `json:"jobs"`
	LandSlots     map[string]int     `json:"land_slots"`
	CraftSlots    int                `json:"craft_slots"`
	TableLevel    int                `json:"craft_table_level"`
	DailyStreak   int                `json:"daily_streak"`
	BestStreak    int                `json:"best_streak"`
	DailyReady    bool               `json:"daily_ready"`
	DailyNextAt   *time.Time         `json:"daily_next_at,omitempty"`
	DailyNextMult float64            `json:"daily_next_multiplier"`
}

// jobStatus derives the visible status; running jobs become done once their
// timer elapses, storage is only touched when the player claims.
func jobStatus(j state.CraftJob, now time.Time) string {
	if j.Status == state.JobRunning && !now.Before(j.ReadyAt()) {
		return string(state.JobDone)
	}
	return string(j.Status)
}

// View assembles the full client-facing snapshot for one player.
func (e Engine) View(ctx context.Context, playerID int64) (StateView, error) {
	ps, err := e.State.Get(ctx, playerID)
	if err != nil {
		return StateView{}, translateStateErr(err)
	}
	return e.buildView(ps), nil
}

func (e Engine) buildView(ps state.PlayerState) StateView {
	now := e.Clock.Now()
	b := e.bundle(&ps)

	tiles := make([]TileView, 0, len(ps.Tiles))
	for _, t := range ps.Tiles {
		tv := TileView{ID: t.ID, Resource: t.Resource, Ready: true}
		if rd, ok := e.Content.Resource(t.Resource); ok {
			tv.Land = rd.Land
		}
		if t.CooldownUntil != nil && now.Before(*t.CooldownUntil) {
			until := *t.CooldownUntil
			tv.CooldownUntil = &until
			tv.CooldownSecsLeft = until.Sub(now).Seconds()
			tv.Ready = false
		}
		tiles = append(tiles, tv)
	}

	jobs := make([]JobView, 0, len(ps.Jobs))
	for _, j := range ps.Jobs {
		jobs = append(jobs, JobView{
			ID:        j.ID,
			ItemKey:   j.ItemKey,
			OutputQty: j.OutputQty,
			StartedAt: j.StartedAt,
			ReadyAt:   j.ReadyAt(),
			Status:    jobStatus(j, now),
		})
	}

	ready, nextAt := e.dailyStatus(ps.Player, now)

	v := StateView{
		Player:        ps.Player,
		NextLevelXP:   e.Ledger.NextThreshold(ps.Player.Level),
		TileCapacity:  e.Ledger.TileCapacity(ps.Player.Level),
		Tiles:         tiles,
		Stocks:        ps.Stocks,
		Items:         ps.Items,
		Cards:         ps.Cards,
		Jobs:          jobs,
		LandSlots:     ps.LandSlots,
		CraftSlots:    1 + b.CraftSlotBonus(),
		TableLevel:    b.TableLevel(),
		DailyStreak:   ps.Player.DailyStreak,
		BestStreak:    ps.Player.BestStreak,
		DailyReady:    ready,
		DailyNextAt:   nextAt,
		DailyNextMult: e.Content.DailyMultiplier(e.nextStreak(ps.Player, now)),
	}
	return v
}
