package game

import (
	"context"
	"time"

	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/progression"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type CollectResult struct {
	TileID        int                         `json:"tile_id"`
	Gains         map[string]float64          `json:"gains"`
	XPGained      float64                     `json:"xp_gained"`
	Level         int                         `json:"level"`
	LeveledUp     bool                        `json:"leveled_up"`
	Rewards       []progression.AppliedReward `json:"rewards,omitempty"`
	CooldownUntil time.Time                   `json:"cooldown_until"`
	Stocks        map[string]float64          `json:"stocks"`
	XP            float64                     `json:"xp"`
}

// Collect harvests one ready tile: applies the owner's modifiers to every
// drop, credits stock and XP, applies level rewards and arms the cooldown.
func (e Engine) Collect(ctx context.Context, playerID int64, tileID int) (CollectResult, error) {
	var res CollectResult
	var resourceKey string
	now := e.Clock.Now()

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		tile := s.Tile(tileID)
		if tile == nil {
			return newErr(CodeTileNotFound, "tile %d does not exist", tileID)
		}
		if tile.Locked {
			return newErr(CodeTileLocked, "tile %d is locked", tileID)
		}
		if tile.CooldownUntil != nil && now.Before(*tile.CooldownUntil) {
			until := *tile.CooldownUntil
			return &Error{Code: CodeOnCooldown, Message: "tile is cooling down", Until: &until}
		}

		rd, ok := e.Content.Resource(tile.Resource)
		if !ok {
			return newErr(CodeResourceNotFound, "resource %q is not collectible", tile.Resource)
		}
		resourceKey = rd.Key

		b := e.bundle(s)
		if land, ok := e.Content.Land(rd.Land); ok && !b.HasLandAccess(land) {
			return newErr(CodeLandLocked, "no access to land %q", rd.Land)
		}

		gains := map[string]float64{
			rd.Key: roundHalfUp(rd.BaseYieldQty * b.YieldMultiplier(rd.Key)),
		}
		for _, extra := range rd.ExtraYields {
			qty := roundHalfUp(extra.Qty * b.YieldMultiplier(extra.Resource))
			if qty <= 0 {
				continue
			}
			gains[extra.Resource] = roundHalfUp(gains[extra.Resource] + qty)
		}
		for key, qty := range gains {
			s.Stocks[key] = roundHalfUp(s.Stocks[key] + qty)
		}

		xp := roundHalfUp(rd.BaseYieldXP * b.XPMultiplier())
		rewards, oldLevel, newLevel := e.grantXP(s, xp)

		cooldown := time.Duration(float64(rd.BaseCooldown) * b.CooldownMultiplier(rd.Key) * float64(time.Second))
		until := now.Add(cooldown)
		tile.CooldownUntil = &until

		res = CollectResult{
			TileID:        tileID,
			Gains:         gains,
			XPGained:      xp,
			Level:         newLevel,
			LeveledUp:     newLevel > oldLevel,
			Rewards:       rewards,
			CooldownUntil: until,
			Stocks:        s.Stocks,
			XP:            s.Player.XP,
		}
		return nil
	})
	if err != nil {
		return CollectResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventCollect, telemetry.EventMetadata{
		"player":   playerID,
		"resource": resourceKey,
		"gains":    res.Gains,
		"xp":       res.XPGained,
	})
	if res.LeveledUp {
		e.record(telemetry.EventLevelUp, telemetry.EventMetadata{
			"player": playerID,
			"level":  res.Level,
		})
	}
	return res, nil
}

type UnlockTileResult struct {
	Tile         state.Tile `json:"tile"`
	TileCapacity int        `json:"tile_capacity"`
	TilesUsed    int        `json:"tiles_used"`
}

// UnlockTile binds a new tile to a resource, enforcing the level gate, the
// resource's unlock rules, the global tile capacity and the land's slot cap.
func (e Engine) UnlockTile(ctx context.Context, playerID int64, resourceKey string) (UnlockTileResult, error) {
	var res UnlockTileResult

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		rd, ok := e.Content.Resource(resourceKey)
		if !ok {
			return newErr(CodeResourceNotFound, "unknown resource %q", resourceKey)
		}
		if s.Player.Level < rd.UnlockMinLevel {
			return &Error{
				Code:     CodeLevelTooLow,
				Message:  "level too low",
				Required: float64(rd.UnlockMinLevel),
				Current:  float64(s.Player.Level),
			}
		}

		b := e.bundle(s)
		if ok, fail := rd.UnlockRules.Eval(content.RuleView{
			Level:   s.Player.Level,
			Coins:   s.Player.Coins,
			HasCard: b.HasCard,
		}); !ok {
			return ruleError(fail)
		}

		capacity := e.Ledger.TileCapacity(s.Player.Level)
		if len(s.Tiles) >= capacity {
			return &Error{
				Code:     CodeTileLimitReached,
				Message:  "all tiles in use",
				Required: float64(capacity),
				Current:  float64(len(s.Tiles)),
			}
		}

		if land, ok := e.Content.Land(rd.Land); ok {
			if !b.HasLandAccess(land) {
				return newErr(CodeLandLocked, "no access to land %q", rd.Land)
			}
			slotCap := land.Slots + s.LandSlots[land.Key]
			used := s.TilesInLand(e.resourceLand, land.Key)
			if used >= slotCap {
				return &Error{
					Code:     CodeTileLimitReached,
					Message:  "no free slots on this land",
					Required: float64(slotCap),
					Current:  float64(used),
					Key:      land.Key,
				}
			}
		}

		tile := state.Tile{ID: s.NextTile, Resource: rd.Key}
		s.NextTile++
		s.Tiles = append(s.Tiles, tile)

		res = UnlockTileResult{
			Tile:         tile,
			TileCapacity: capacity,
			TilesUsed:    len(s.Tiles),
		}
		return nil
	})
	if err != nil {
		return UnlockTileResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventTileUnlocked, telemetry.EventMetadata{
		"player":   playerID,
		"resource": res.Tile.Resource,
	})
	return res, nil
}

func (e Engine) resourceLand(resourceKey string) string {
	if rd, ok := e.Content.Resource(resourceKey); ok {
		return rd.Land
	}
	return ""
}

// ruleError maps an unlock rule failure onto a gameplay error.
func ruleError(fail content.RuleFailure) *Error {
	code := CodeLocked
	switch fail.Reason {
	case "level_too_low":
		code = CodeLevelTooLow
	case "not_enough_coins":
		code = CodeNotEnoughCoins
	}
	return &Error{
		Code:     code,
		Message:  "unlock requirements not met",
		Required: float64(fail.Required),
		Current:  float64(fail.Current),
		Key:      fail.Key,
	}
}
