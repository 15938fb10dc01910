// Package game implements the gameplay rules: collection, progression,
// crafting, the card shop and the daily chest. Every operation loads one
// player aggregate, mutates it transactionally and reports what changed.
package game

import (
	"context"
	"math"
	"strings"

	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/modifier"
	"github.com/ReC82/LodyLand/internal/progression"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type Engine struct {
	State   state.Repository
	Content *content.Store
	Ledger  *progression.Ledger
	Events  telemetry.Repository
	Clock   Clock
}

func (e Engine) bundle(ps *state.PlayerState) modifier.Bundle {
	return modifier.Resolve(ps.Cards, e.Content.Card)
}

func (e Engine) record(event telemetry.EventType, md telemetry.EventMetadata) {
	if e.Events == nil {
		return
	}
	_ = e.Events.RecordEvent(event, md)
}

// roundHalfUp rounds to one decimal, ties away from zero. Yields stay on a
// tenth grid so fractional drop bonuses accumulate without float drift.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// roundCoins rounds a coin amount to the nearest whole coin, half up.
func roundCoins(v float64) int {
	return int(math.Floor(v + 0.5))
}

// grantXP adds xp and applies level rewards for every level crossed.
// Returns the rewards granted, oldLevel and newLevel.
func (e Engine) grantXP(ps *state.PlayerState, xp float64) ([]progression.AppliedReward, int, int) {
	oldLevel := ps.Player.Level
	ps.Player.XP += xp
	newLevel := e.Ledger.LevelForXP(ps.Player.XP)
	if newLevel <= oldLevel {
		return nil, oldLevel, oldLevel
	}
	ps.Player.Level = newLevel
	rewards := e.Ledger.RewardsBetween(oldLevel, newLevel)
	for _, rw := range rewards {
		switch rw.Type {
		case "coins":
			ps.Player.Coins += roundCoins(rw.Amount)
		case "diams":
			ps.Player.Diams += roundCoins(rw.Amount)
		case "resource":
			ps.Stocks[rw.Key] = roundHalfUp(ps.Stocks[rw.Key] + rw.Amount)
		case "card":
			copies := roundCoins(rw.Amount)
			if copies < 1 {
				copies = 1
			}
			ps.Cards[rw.Key] += copies
		}
	}
	return rewards, oldLevel, newLevel
}

type RegisterResult struct {
	Player       state.Player `json:"player"`
	StartingCard string       `json:"starting_card,omitempty"`
}

// Register creates a player and grants the configured starting card.
func (e Engine) Register(ctx context.Context, name string) (RegisterResult, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 32 {
		return RegisterResult{}, newErr(CodeInvalidName, "name must be 2-32 characters")
	}

	ps, err := e.State.Create(ctx, name)
	if err != nil {
		if err == state.ErrNameTaken {
			return RegisterResult{}, newErr(CodeNameTaken, "name %q is taken", name)
		}
		return RegisterResult{}, err
	}

	starting := e.Content.StartingCard
	if starting != "" {
		ps, err = e.State.Update(ctx, ps.Player.ID, func(s *state.PlayerState) error {
			s.Cards[starting]++
			return nil
		})
		if err != nil {
			return RegisterResult{}, err
		}
	}

	e.record(telemetry.EventPlayerRegistered, telemetry.EventMetadata{
		"player": ps.Player.Name,
	})
	return RegisterResult{Player: ps.Player, StartingCard: starting}, nil
}

func translateStateErr(err error) error {
	if err == state.ErrNotFound {
		return newErr(CodePlayerNotFound, "no such player")
	}
	return err
}
