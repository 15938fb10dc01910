package content

// Default returns the built-in catalog. It mirrors the shipped YAML content
// and keeps the server (and tests) working when no content directory is
// configured.
func Default() *Store {
	s := &Store{
		Resources: map[string]ResourceDef{},
		Cards:     map[string]CardDef{},
		Recipes:   map[string]RecipeDef{},
		Lands:     map[string]LandDef{},

		StartingCard: "land_forest",
	}

	for _, ld := range []LandDef{
		{Key: "forest", Label: "Forest", AccessCard: "land_forest", Slots: 4, SlotBaseCostDiams: 10, SlotCostMultiplier: 1.5},
		{Key: "beach", Label: "Beach", AccessCard: "land_beach", Slots: 3, SlotBaseCostDiams: 15, SlotCostMultiplier: 1.5},
		{Key: "lake", Label: "Lake", AccessCard: "land_lake", Slots: 3, SlotBaseCostDiams: 20, SlotCostMultiplier: 1.6},
	} {
		s.Lands[ld.Key] = ld
	}

	for _, rd := range []ResourceDef{
		{Key: "branch", Label: "Branches", Land: "forest", BaseCooldown: 5, BaseYieldQty: 1, BaseYieldXP: 1, BaseSellPrice: 1, Enabled: true},
		{Key: "palm_leaf", Label: "Palm leaves", Land: "forest", BaseCooldown: 6, BaseYieldQty: 1, BaseYieldXP: 1, BaseSellPrice: 1, Enabled: true},
		{Key: "wood", Label: "Palm wood", Land: "forest", BaseCooldown: 10, BaseYieldQty: 1, BaseYieldXP: 1, BaseSellPrice: 2, Enabled: true},
		{Key: "stone", Label: "Stone", Land: "beach", UnlockMinLevel: 2, BaseCooldown: 12, BaseYieldQty: 1, BaseYieldXP: 1, BaseSellPrice: 3, Enabled: true},
		{
			Key: "sand", Label: "Sand", Land: "beach", UnlockMinLevel: 2,
			BaseCooldown: 8, BaseYieldQty: 1.5, BaseYieldXP: 1, BaseSellPrice: 1,
			// Digging the beach occasionally surfaces shells alongside sand.
			ExtraYields: []YieldEntry{{Resource: "shell", Qty: 0.5}},
			Enabled:     true,
		},
		{Key: "shell", Label: "Shells", Land: "beach", UnlockMinLevel: 3, BaseCooldown: 15, BaseYieldQty: 1, BaseYieldXP: 2, BaseSellPrice: 4, Enabled: true},
		{
			Key: "pearl", Label: "Pearls", Land: "lake", UnlockMinLevel: 4,
			BaseCooldown: 30, BaseYieldQty: 1, BaseYieldXP: 3, BaseSellPrice: 10,
			UnlockRules: &Rule{All: []Rule{{Type: "coins_at_least", Value: 50}}},
			Enabled:     true,
		},
	} {
		s.Resources[rd.Key] = rd
	}

	for _, cd := range []CardDef{
		{
			Key: "boost_branch_yield", Label: "Branch gatherer", Type: CardResourceBoost, Rarity: "common",
			Gameplay: Gameplay{Effects: []Effect{{Target: "branch", Stat: StatYield, Op: OpAdd, Magnitude: 0.5}}},
			Prices:   []Price{{Coins: 10}, {Diams: 1}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 4},
			Enabled:  true,
		},
		{
			Key: "boost_yield_all", Label: "Green thumb", Type: CardResourceBoost, Rarity: "rare",
			Gameplay: Gameplay{Effects: []Effect{{Stat: StatYield, Op: OpAdd, Magnitude: 0.25}}},
			Prices:   []Price{{Coins: 60}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 2},
			UnlockRules: &Rule{All: []Rule{{Type: "level_at_least", Value: 2}}},
			Enabled:     true,
		},
		{
			Key: "boost_cooldown_wood", Label: "Sharpened axe", Type: CardCooldownBoost, Rarity: "common",
			Gameplay: Gameplay{Effects: []Effect{{Target: "wood", Stat: StatCooldown, Op: OpMul, Magnitude: 0.9}}},
			Prices:   []Price{{Coins: 20}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 3},
			Enabled:  true,
		},
		{
			Key: "boost_cooldown_all", Label: "Morning coffee", Type: CardCooldownBoost, Rarity: "rare",
			Gameplay: Gameplay{Effects: []Effect{{Stat: StatCooldown, Op: OpMul, Magnitude: 0.95}}},
			Prices:   []Price{{Coins: 40}, {Resources: map[string]float64{"shell": 6}}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 5},
			Enabled:  true,
		},
		{
			Key: "boost_xp", Label: "Field journal", Type: CardXPBoost, Rarity: "rare",
			Gameplay: Gameplay{Effects: []Effect{{Stat: StatXP, Op: OpMul, Magnitude: 1.2}}},
			Prices:   []Price{{Coins: 50}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 2},
			Enabled:  true,
		},
		{
			Key: "boost_sell_pearl", Label: "Jeweler's loupe", Type: CardSellBoost, Rarity: "epic",
			Gameplay: Gameplay{Effects: []Effect{{Target: "pearl", Stat: StatSellPrice, Op: OpAdd, Magnitude: 0.5}}},
			Prices:   []Price{{Diams: 5}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 1},
			Enabled:  true,
		},
		{
			Key: "craft_upgrade_1", Label: "Workbench vise", Type: CardCraftUpgrade, Rarity: "rare",
			Gameplay: Gameplay{TableLevel: 2},
			Prices:   []Price{{Coins: 100}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 1},
			Enabled:  true,
		},
		{
			Key: "craft_upgrade_2", Label: "Master toolset", Type: CardCraftUpgrade, Rarity: "epic",
			Gameplay:    Gameplay{TableLevel: 3},
			Prices:      []Price{{Coins: 300}},
			Shop:        ShopConfig{Enabled: true, MaxOwned: 1},
			UnlockRules: &Rule{All: []Rule{{Type: "has_card", Key: "craft_upgrade_1"}}},
			Enabled:     true,
		},
		{
			Key: "craft_haste", Label: "Oiled gears", Type: CardCraftSpeed, Rarity: "rare",
			Gameplay: Gameplay{Effects: []Effect{{Stat: StatCraftSpeed, Op: OpMul, Magnitude: 1.25}}},
			Prices:   []Price{{Coins: 80}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 2},
			Enabled:  true,
		},
		{
			Key: "craft_bench_extension", Label: "Bench extension", Type: CardCraftSlot, Rarity: "rare",
			Gameplay: Gameplay{SlotBonus: 1},
			Prices:   []Price{{Coins: 120}},
			Shop:     ShopConfig{Enabled: true, MaxOwned: 2},
			Enabled:  true,
		},
		{
			Key: "land_forest", Label: "Forest deed", Type: CardLandAccess, Rarity: "common",
			Gameplay: Gameplay{LandKey: "forest"},
			// Granted at registration, never sold.
			Shop:    ShopConfig{Enabled: false, MaxOwned: 1},
			Enabled: true,
		},
		{
			Key: "land_beach", Label: "Beach deed", Type: CardLandAccess, Rarity: "rare",
			Gameplay:    Gameplay{LandKey: "beach"},
			Prices:      []Price{{Coins: 150}, {Diams: 10}},
			Shop:        ShopConfig{Enabled: true, MaxOwned: 1},
			UnlockRules: &Rule{All: []Rule{{Type: "level_at_least", Value: 2}}},
			Enabled:     true,
		},
		{
			Key: "land_lake", Label: "Lake deed", Type: CardLandAccess, Rarity: "epic",
			Gameplay:    Gameplay{LandKey: "lake"},
			Prices:      []Price{{Coins: 400}, {Diams: 25}},
			Shop:        ShopConfig{Enabled: true, MaxOwned: 1},
			UnlockRules: &Rule{All: []Rule{{Type: "level_at_least", Value: 4}}},
			Enabled:     true,
		},
	} {
		s.Cards[cd.Key] = cd
	}

	for _, rc := range []RecipeDef{
		{
			ItemKey:  "item_rope",
			Label:    "Rope",
			Location: "craft_table",
			Pattern:  []string{"LLL"},
			Legend: map[string]LegendEntry{
				"L": {Key: "palm_leaf", Quantity: 2},
			},
			OutputQuantity:     1,
			RequiredTableLevel: 1,
		},
		{
			ItemKey:  "tool_wooden_axe",
			Label:    "Wooden axe",
			Location: "craft_table",
			Pattern:  []string{"WW.", "WB.", ".B."},
			Legend: map[string]LegendEntry{
				"W": {Key: "wood", Quantity: 1},
				"B": {Key: "branch", Quantity: 1},
			},
			OutputQuantity:     1,
			CraftTimeSeconds:   30,
			RequiredTableLevel: 1,
			MinLevel:           1,
		},
		{
			ItemKey:  "item_pearl_necklace",
			Label:    "Pearl necklace",
			Location: "craft_table",
			Pattern:  []string{"PPP", "L.L", ".L."},
			Legend: map[string]LegendEntry{
				"P": {Key: "pearl", Quantity: 1},
				"L": {Key: "palm_leaf", Quantity: 2},
			},
			OutputQuantity:     1,
			CraftTimeSeconds:   120,
			RequiredTableLevel: 2,
			MinLevel:           4,
		},
	} {
		s.Recipes[rc.ItemKey] = rc
	}

	s.Levels = []LevelDef{
		{Level: 1, XPRequired: 10, TileCapacity: 4, Rewards: []Reward{{Type: "coins", Amount: 5}}},
		{Level: 2, XPRequired: 30, TileCapacity: 6, Rewards: []Reward{{Type: "coins", Amount: 10}, {Type: "resource", Key: "branch", Amount: 5}}},
		{Level: 3, XPRequired: 60, TileCapacity: 8, Rewards: []Reward{{Type: "diams", Amount: 1}}},
		{Level: 4, XPRequired: 100, TileCapacity: 10, Rewards: []Reward{{Type: "coins", Amount: 25}, {Type: "card", Key: "boost_cooldown_all", Amount: 1}}},
		{Level: 5, XPRequired: 150, TileCapacity: 12, Rewards: []Reward{{Type: "diams", Amount: 3}}},
	}

	s.Daily = DailyConfig{
		BaseRewardCoins: 10,
		Tiers: []DailyTier{
			{MinStreak: 3, Multiplier: 1.5},
			{MinStreak: 7, Multiplier: 2},
			{MinStreak: 30, Multiplier: 3},
		},
	}

	return s
}

// BaseTileCapacity is the tile cap before level 1 is reached.
const BaseTileCapacity = 3
