package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/progression"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

func newTestEngine(t *testing.T) (Engine, *FakeClock) {
	t.Helper()
	store := content.Default()
	clock := NewFakeClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	return Engine{
		State:   state.NewMemoryRepo(),
		Content: store,
		Ledger:  progression.NewLedger(store),
		Events:  telemetry.NewMemoryRepository(),
		Clock:   clock,
	}, clock
}

func newTestPlayer(t *testing.T, e Engine) int64 {
	t.Helper()
	res, err := e.Register(context.Background(), "tester")
	require.NoError(t, err)
	return res.Player.ID
}

// seed mutates the player directly, bypassing gameplay rules.
func seed(t *testing.T, e Engine, id int64, fn func(*state.PlayerState)) {
	t.Helper()
	_, err := e.State.Update(context.Background(), id, func(s *state.PlayerState) error {
		fn(s)
		return nil
	})
	require.NoError(t, err)
}

func addTile(t *testing.T, e Engine, id int64, resource string) int {
	t.Helper()
	var tileID int
	seed(t, e, id, func(s *state.PlayerState) {
		tileID = s.NextTile
		s.NextTile++
		s.Tiles = append(s.Tiles, state.Tile{ID: tileID, Resource: resource})
	})
	return tileID
}

func gameCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	ge, ok := AsGameError(err)
	require.True(t, ok, "expected gameplay error, got %v", err)
	return ge.Code
}

func TestRegisterGrantsStartingCard(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := e.Register(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "land_forest", res.StartingCard)
	assert.Equal(t, 0, res.Player.Level)

	ps, err := e.State.Get(ctx, res.Player.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Cards["land_forest"])

	_, err = e.Register(ctx, "fresh")
	assert.Equal(t, CodeNameTaken, gameCode(t, err))

	_, err = e.Register(ctx, "x")
	assert.Equal(t, CodeInvalidName, gameCode(t, err))
}

func TestCollectBaseYield(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	ctx := context.Background()

	res, err := e.Collect(ctx, id, tile)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Gains["branch"])
	assert.Equal(t, 1.0, res.Stocks["branch"])
	assert.Equal(t, 1.0, res.XP)
	assert.Equal(t, clock.Now().Add(5*time.Second), res.CooldownUntil)
}

func TestCollectTwoAdditiveYieldCards(t *testing.T) {
	// Two +0.5 additive yield cards on branch double the harvest.
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) { s.Cards["boost_branch_yield"] = 2 })

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Gains["branch"])
}

func TestCollectGlobalAndSpecificStack(t *testing.T) {
	// Global +0.25 applies first, then the branch-specific +0.5:
	// 1 x 1.25 x 1.5 = 1.875, rounded to 1.9.
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) {
		s.Cards["boost_yield_all"] = 1
		s.Cards["boost_branch_yield"] = 1
	})

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.Equal(t, 1.9, res.Gains["branch"])
}

func TestCollectCooldownBlocksAndIsSideEffectFree(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	ctx := context.Background()

	_, err := e.Collect(ctx, id, tile)
	require.NoError(t, err)

	_, err = e.Collect(ctx, id, tile)
	assert.Equal(t, CodeOnCooldown, gameCode(t, err))
	ge, _ := AsGameError(err)
	require.NotNil(t, ge.Until)

	ps, err := e.State.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ps.Stocks["branch"])
	assert.Equal(t, 1.0, ps.Player.XP)

	clock.Advance(5 * time.Second)
	res, err := e.Collect(ctx, id, tile)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Stocks["branch"])
}

func TestCollectCooldownCardShortensWindow(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "wood")
	seed(t, e, id, func(s *state.PlayerState) { s.Cards["boost_cooldown_wood"] = 1 })

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(9*time.Second), res.CooldownUntil)
}

func TestCollectLockedTile(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) { s.Tile(tile).Locked = true })

	_, err := e.Collect(context.Background(), id, tile)
	assert.Equal(t, CodeTileLocked, gameCode(t, err))
}

func TestCollectLandLockedWithoutDeed(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "stone")

	_, err := e.Collect(context.Background(), id, tile)
	assert.Equal(t, CodeLandLocked, gameCode(t, err))
}

func TestCollectExtraYields(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "sand")
	seed(t, e, id, func(s *state.PlayerState) { s.Cards["land_beach"] = 1 })

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.Equal(t, 1.5, res.Gains["sand"])
	assert.Equal(t, 0.5, res.Gains["shell"])
}

func TestCollectLevelUpGrantsRewards(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) { s.Player.XP = 9 })

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.Level)
	require.Len(t, res.Rewards, 1)
	assert.Equal(t, "coins", res.Rewards[0].Type)

	ps, err := e.State.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, ps.Player.Coins)
	assert.Equal(t, 1, ps.Player.Level)
}

func TestCollectXPBoostMultiplies(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) { s.Cards["boost_xp"] = 1 })

	res, err := e.Collect(context.Background(), id, tile)
	require.NoError(t, err)
	assert.Equal(t, 1.2, res.XPGained)
}

func TestLevelRewardCardHonorsAmount(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Content.Levels[0].Rewards = []content.Reward{
		{Type: "card", Key: "boost_cooldown_all", Amount: 2},
	}
	e.Ledger = progression.NewLedger(e.Content)
	id := newTestPlayer(t, e)

	seed(t, e, id, func(s *state.PlayerState) {
		e.grantXP(s, 10)
	})

	ps, err := e.State.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Player.Level)
	assert.Equal(t, 2, ps.Cards["boost_cooldown_all"])
}

func TestUnlockTile(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	res, err := e.UnlockTile(ctx, id, "branch")
	require.NoError(t, err)
	assert.Equal(t, "branch", res.Tile.Resource)
	assert.Equal(t, 1, res.TilesUsed)
	assert.Equal(t, 3, res.TileCapacity)
}

func TestUnlockTileLevelGate(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)

	_, err := e.UnlockTile(context.Background(), id, "stone")
	assert.Equal(t, CodeLevelTooLow, gameCode(t, err))
	ge, _ := AsGameError(err)
	assert.Equal(t, 2.0, ge.Required)
	assert.Equal(t, 0.0, ge.Current)
}

func TestUnlockTileCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.UnlockTile(ctx, id, "branch")
		require.NoError(t, err)
	}
	_, err := e.UnlockTile(ctx, id, "branch")
	assert.Equal(t, CodeTileLimitReached, gameCode(t, err))
}

func TestUnlockTileLandSlotCap(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	// Enough player capacity, but the forest only has 4 base slots.
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 60
		s.Player.Level = 3
	})
	for i := 0; i < 4; i++ {
		_, err := e.UnlockTile(ctx, id, "branch")
		require.NoError(t, err)
	}
	_, err := e.UnlockTile(ctx, id, "branch")
	assert.Equal(t, CodeTileLimitReached, gameCode(t, err))

	// An extra purchased slot lifts the cap.
	seed(t, e, id, func(s *state.PlayerState) { s.LandSlots["forest"] = 1 })
	_, err = e.UnlockTile(ctx, id, "branch")
	assert.NoError(t, err)
}

func TestUnlockTileCoinsRule(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 100
		s.Player.Level = 4
		s.Cards["land_lake"] = 1
	})

	_, err := e.UnlockTile(ctx, id, "pearl")
	assert.Equal(t, CodeNotEnoughCoins, gameCode(t, err))

	seed(t, e, id, func(s *state.PlayerState) { s.Player.Coins = 50 })
	_, err = e.UnlockTile(ctx, id, "pearl")
	assert.NoError(t, err)
}

func TestCraftImmediate(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Stocks["palm_leaf"] = 10 })

	res, err := e.Craft(ctx, id, "item_rope", "craft_table", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Crafted)
	assert.Nil(t, res.Job)
	assert.Equal(t, 4.0, res.Stocks["palm_leaf"])
	assert.Equal(t, 1, res.Items["item_rope"])
}

func TestCraftMissingInputsReported(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Stocks["palm_leaf"] = 4 })

	_, err := e.Craft(ctx, id, "item_rope", "craft_table", 1)
	assert.Equal(t, CodeNotEnoughRes, gameCode(t, err))
	ge, _ := AsGameError(err)
	assert.Equal(t, map[string]float64{"palm_leaf": 2}, ge.Missing)

	// Failed craft consumes nothing.
	ps, err := e.State.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4.0, ps.Stocks["palm_leaf"])
	assert.Equal(t, 0, ps.Items["item_rope"])
}

func TestCraftTimedJobLifecycle(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 10
		s.Player.Level = 1
		s.Stocks["wood"] = 5
		s.Stocks["branch"] = 5
	})

	res, err := e.Craft(ctx, id, "tool_wooden_axe", "craft_table", 1)
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	assert.Equal(t, 0, res.Crafted)
	assert.Equal(t, clock.Now().Add(30*time.Second), res.Job.ReadyAt)

	_, err = e.ClaimCraft(ctx, id, res.Job.ID)
	assert.Equal(t, CodeJobNotReady, gameCode(t, err))

	clock.Advance(30 * time.Second)
	claim, err := e.ClaimCraft(ctx, id, res.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, claim.Gained)
	assert.Equal(t, 1, claim.Items["tool_wooden_axe"])

	_, err = e.ClaimCraft(ctx, id, res.Job.ID)
	assert.Equal(t, CodeJobClaimed, gameCode(t, err))
}

func TestCraftSpeedCardShortensJobs(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 10
		s.Player.Level = 1
		s.Stocks["wood"] = 5
		s.Stocks["branch"] = 5
		s.Cards["craft_haste"] = 1
	})

	res, err := e.Craft(context.Background(), id, "tool_wooden_axe", "craft_table", 1)
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	assert.Equal(t, clock.Now().Add(24*time.Second), res.Job.ReadyAt)
}

func TestCraftSlotLimit(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 10
		s.Player.Level = 1
		s.Stocks["wood"] = 50
		s.Stocks["branch"] = 50
	})

	_, err := e.Craft(ctx, id, "tool_wooden_axe", "craft_table", 1)
	require.NoError(t, err)
	_, err = e.Craft(ctx, id, "tool_wooden_axe", "craft_table", 1)
	assert.Equal(t, CodeCraftSlotsBusy, gameCode(t, err))

	seed(t, e, id, func(s *state.PlayerState) { s.Cards["craft_bench_extension"] = 1 })
	_, err = e.Craft(ctx, id, "tool_wooden_axe", "craft_table", 1)
	assert.NoError(t, err)
}

func TestCraftTableLevelGate(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 100
		s.Player.Level = 4
		s.Stocks["pearl"] = 10
		s.Stocks["palm_leaf"] = 20
	})

	_, err := e.Craft(ctx, id, "item_pearl_necklace", "craft_table", 1)
	assert.Equal(t, CodeCraftTableTooLow, gameCode(t, err))

	seed(t, e, id, func(s *state.PlayerState) { s.Cards["craft_upgrade_1"] = 1 })
	_, err = e.Craft(ctx, id, "item_pearl_necklace", "craft_table", 1)
	assert.NoError(t, err)
}

func TestCraftRecipeNotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)

	_, err := e.Craft(context.Background(), id, "item_rope", "campfire", 1)
	assert.Equal(t, CodeRecipeNotFound, gameCode(t, err))
}

func TestBuyCard(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Player.Coins = 25 })

	res, err := e.BuyCard(ctx, id, "boost_branch_yield", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Owned)
	assert.Equal(t, 15, res.Coins)

	_, err = e.BuyCard(ctx, id, "boost_branch_yield", 0)
	require.NoError(t, err)
	_, err = e.BuyCard(ctx, id, "boost_branch_yield", 0)
	assert.Equal(t, CodeNotEnoughCoins, gameCode(t, err))
}

func TestBuyCardMaxOwned(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.Diams = 100
		s.Cards["boost_sell_pearl"] = 1
	})

	_, err := e.BuyCard(ctx, id, "boost_sell_pearl", 0)
	assert.Equal(t, CodeMaxOwnedReached, gameCode(t, err))
}

func TestBuyCardAlternativePrices(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Stocks["shell"] = 7 })

	// Pay the shell bundle instead of coins.
	res, err := e.BuyCard(ctx, id, "boost_cooldown_all", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Stocks["shell"])
	assert.Equal(t, 0, res.Coins)

	_, err = e.BuyCard(ctx, id, "boost_cooldown_all", 5)
	assert.Equal(t, CodeInvalidPriceIndex, gameCode(t, err))
}

func TestBuyCardUnlockRule(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Player.Coins = 500 })

	_, err := e.BuyCard(ctx, id, "boost_yield_all", 0)
	assert.Equal(t, CodeLevelTooLow, gameCode(t, err))

	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.XP = 30
		s.Player.Level = 2
	})
	_, err = e.BuyCard(ctx, id, "boost_yield_all", 0)
	assert.NoError(t, err)
}

func TestBuyCardNotInShop(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)

	_, err := e.BuyCard(context.Background(), id, "land_forest", 0)
	assert.Equal(t, CodeCardDisabled, gameCode(t, err))

	_, err = e.BuyCard(context.Background(), id, "no_such_card", 0)
	assert.Equal(t, CodeCardNotFound, gameCode(t, err))
}

func TestSellResource(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Stocks["branch"] = 5 })

	res, err := e.SellResource(ctx, id, "branch", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Gained)
	assert.Equal(t, 3, res.Coins)
	assert.Equal(t, 2.0, res.Stocks["branch"])

	_, err = e.SellResource(ctx, id, "branch", 0)
	assert.Equal(t, CodeInvalidQuantity, gameCode(t, err))
	_, err = e.SellResource(ctx, id, "branch", 10)
	assert.Equal(t, CodeInvalidQuantity, gameCode(t, err))
}

func TestSellResourceWithBoostRoundsHalfUp(t *testing.T) {
	// 1 pearl at 10 coins with +0.5 sell boost: 15 coins; 0.5 pearl would
	// round 7.5 up to 8.
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Stocks["pearl"] = 2
		s.Cards["boost_sell_pearl"] = 1
	})

	res, err := e.SellResource(ctx, id, "pearl", 1)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Gained)

	res, err = e.SellResource(ctx, id, "pearl", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Gained)
}

func TestSellThenBuyNeverDoubleSpends(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.Coins = 5
		s.Stocks["wood"] = 10
	})

	sold, err := e.SellResource(ctx, id, "wood", 5) // +10 coins
	require.NoError(t, err)
	assert.Equal(t, 15, sold.Coins)

	bought, err := e.BuyCard(ctx, id, "boost_branch_yield", 0) // -10 coins
	require.NoError(t, err)
	assert.Equal(t, 5, bought.Coins)
}

func TestBuyLandSlotPricing(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	seed(t, e, id, func(s *state.PlayerState) { s.Player.Diams = 30 })

	res, err := e.BuyLandSlot(ctx, id, "forest")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Cost)
	assert.Equal(t, 5, res.TotalSlots)

	// Second slot: 10 x 1.5 = 15.
	res, err = e.BuyLandSlot(ctx, id, "forest")
	require.NoError(t, err)
	assert.Equal(t, 15, res.Cost)
	assert.Equal(t, 5, res.Diams)

	_, err = e.BuyLandSlot(ctx, id, "forest")
	assert.Equal(t, CodeNotEnoughDiams, gameCode(t, err))

	_, err = e.BuyLandSlot(ctx, id, "beach")
	assert.Equal(t, CodeLandLocked, gameCode(t, err))
}

func TestDailyClaimAndStreak(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	res, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 10, res.Coins)
	assert.Equal(t, 1.0, res.Multiplier)

	_, err = e.ClaimDaily(ctx, id)
	assert.Equal(t, CodeAlreadyClaimed, gameCode(t, err))
	ge, _ := AsGameError(err)
	require.NotNil(t, ge.NextEligibleAt)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), *ge.NextEligibleAt)

	// Failed claim leaves the streak untouched.
	ps, err := e.State.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Player.DailyStreak)

	clock.Advance(24 * time.Hour)
	res, err = e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
	assert.Equal(t, 2, res.BestStreak)
}

func TestDailyStreakCrossesMidnightNotWindow(t *testing.T) {
	// 23:59 then 00:01 the next day are distinct calendar days.
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	clock.Set(time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC))
	_, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)

	clock.Set(time.Date(2024, 5, 11, 0, 1, 0, 0, time.UTC))
	res, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
}

func TestDailyStreakTierMultiplier(t *testing.T) {
	// Streak 6 claimed exactly the next day becomes 7 at the x2 tier.
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	prev := clock.Now().Add(-24 * time.Hour)
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.LastDaily = &prev
		s.Player.DailyStreak = 6
		s.Player.BestStreak = 6
	})

	res, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Streak)
	assert.Equal(t, 7, res.BestStreak)
	assert.Equal(t, 2.0, res.Multiplier)
	assert.Equal(t, 20, res.Coins)
}

func TestDailyStreakResetsAfterGap(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	prev := clock.Now().Add(-72 * time.Hour)
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.LastDaily = &prev
		s.Player.DailyStreak = 9
		s.Player.BestStreak = 9
	})

	res, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 9, res.BestStreak)
}

func TestDailyStatus(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	st, err := e.Daily(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.Equal(t, 10, st.NextCoins)

	_, err = e.ClaimDaily(ctx, id)
	require.NoError(t, err)

	st, err = e.Daily(ctx, id)
	require.NoError(t, err)
	assert.False(t, st.Ready)
	require.NotNil(t, st.NextEligibleAt)

	clock.Advance(24 * time.Hour)
	st, err = e.Daily(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.Equal(t, 1, st.Streak)
}

func TestDailyStatusPreviewsTomorrowAfterClaim(t *testing.T) {
	// Claiming at streak 6 means tomorrow's claim lands on the x2 tier;
	// the status preview must advertise that, not the current tier.
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()

	prev := clock.Now().Add(-24 * time.Hour)
	seed(t, e, id, func(s *state.PlayerState) {
		s.Player.LastDaily = &prev
		s.Player.DailyStreak = 5
		s.Player.BestStreak = 5
	})

	res, err := e.ClaimDaily(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 6, res.Streak)

	st, err := e.Daily(ctx, id)
	require.NoError(t, err)
	assert.False(t, st.Ready)
	assert.Equal(t, 6, st.Streak)
	assert.Equal(t, 2.0, st.NextMultiplier)
	assert.Equal(t, 20, st.NextCoins)
}

func TestViewSnapshot(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	ctx := context.Background()
	tile := addTile(t, e, id, "branch")

	_, err := e.Collect(ctx, id, tile)
	require.NoError(t, err)

	v, err := e.View(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.Tiles, 1)
	assert.False(t, v.Tiles[0].Ready)
	assert.Equal(t, 3, v.TileCapacity)
	assert.Equal(t, 1, v.CraftSlots)
	assert.Equal(t, 1, v.TableLevel)
	require.NotNil(t, v.NextLevelXP)
	assert.Equal(t, 10.0, *v.NextLevelXP)

	clock.Advance(5 * time.Second)
	v, err = e.View(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Tiles[0].Ready)
}

func TestRepeatedCollectAccumulatesExactly(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	seed(t, e, id, func(s *state.PlayerState) { s.Cards["boost_branch_yield"] = 2 })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := e.Collect(ctx, id, tile)
		require.NoError(t, err)
		clock.Advance(5 * time.Second)
	}

	ps, err := e.State.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10.0, ps.Stocks["branch"])
}

func TestCollectEventsFeedBalanceStats(t *testing.T) {
	e, clock := newTestEngine(t)
	id := newTestPlayer(t, e)
	tile := addTile(t, e, id, "branch")
	ctx := context.Background()

	_, err := e.Collect(ctx, id, tile)
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	_, err = e.Collect(ctx, id, tile)
	require.NoError(t, err)

	events, err := e.Events.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	stats, err := telemetry.CalculateStats(events, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Collections)
	assert.Equal(t, 2, stats.CollectedByRes["branch"])
}

func TestSellResourceRejectsSubTenthQuantity(t *testing.T) {
	e, _ := newTestEngine(t)
	id := newTestPlayer(t, e)
	seed(t, e, id, func(s *state.PlayerState) { s.Stocks["branch"] = 5 })
	ctx := context.Background()

	// 0.04 rounds to zero stock; it must fail, not sell nothing for nothing.
	_, err := e.SellResource(ctx, id, "branch", 0.04)
	assert.Equal(t, CodeInvalidQuantity, gameCode(t, err))

	ps, err := e.State.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5.0, ps.Stocks["branch"])
	assert.Equal(t, 0, ps.Player.Coins)
}
