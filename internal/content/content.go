package content

import (
	"fmt"
	"sort"
)

// Stat is a player statistic a card effect can modify.
type Stat string

const (
	StatYield      Stat = "yield"
	StatCooldown   Stat = "cooldown"
	StatXP         Stat = "xp"
	StatSellPrice  Stat = "sell_price"
	StatCraftSpeed Stat = "craft_speed"
)

// Op is how an effect combines with the base value.
type Op string

const (
	OpAdd Op = "add"
	OpMul Op = "mul"
)

// Effect is one stacking modifier granted by a card. Target is a resource
// key, or empty for a global effect on the stat.
type Effect struct {
	Target    string  `yaml:"target" json:"target"`
	Stat      Stat    `yaml:"stat" json:"stat"`
	Op        Op      `yaml:"op" json:"op"`
	Magnitude float64 `yaml:"magnitude" json:"magnitude"`
}

type CardType string

const (
	CardResourceBoost CardType = "resource_boost"
	CardCooldownBoost CardType = "cooldown_boost"
	CardXPBoost       CardType = "xp_boost"
	CardSellBoost     CardType = "sell_boost"
	CardCraftSpeed    CardType = "craft_speed"
	CardCraftUpgrade  CardType = "craft_upgrade"
	CardCraftSlot     CardType = "craft_slot"
	CardLandAccess    CardType = "land_access"
	CardLandSlot      CardType = "land_slot"
	CardLandLootBoost CardType = "land_loot_boost"
	CardPack          CardType = "pack"
)

// Gameplay is the type-specific payload of a card definition.
type Gameplay struct {
	Effects    []Effect `yaml:"effects" json:"effects,omitempty"`
	LandKey    string   `yaml:"land_key" json:"land_key,omitempty"`
	SlotBonus  int      `yaml:"slot_bonus" json:"slot_bonus,omitempty"`
	TableLevel int      `yaml:"table_level" json:"table_level,omitempty"`
}

// Price is one bundle a buyer may pay. A card lists alternatives; the
// player satisfies exactly one of them.
type Price struct {
	Coins     int                `yaml:"coins" json:"coins,omitempty"`
	Diams     int                `yaml:"diams" json:"diams,omitempty"`
	Resources map[string]float64 `yaml:"resources" json:"resources,omitempty"`
}

type ShopConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	MaxOwned      int  `yaml:"max_owned" json:"max_owned,omitempty"`
	PurchaseLimit int  `yaml:"purchase_limit" json:"purchase_limit,omitempty"`
}

type CardDef struct {
	Key         string     `yaml:"key" json:"key"`
	Label       string     `yaml:"label" json:"label"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Type        CardType   `yaml:"type" json:"type"`
	Rarity      string     `yaml:"rarity" json:"rarity,omitempty"`
	Gameplay    Gameplay   `yaml:"gameplay" json:"gameplay"`
	Prices      []Price    `yaml:"prices" json:"prices"`
	Shop        ShopConfig `yaml:"shop" json:"shop"`
	UnlockRules *Rule      `yaml:"unlock_rules" json:"unlock_rules,omitempty"`
	Enabled     bool       `yaml:"enabled" json:"enabled"`
}

// YieldEntry is one extra drop a tile grants on collection, on top of its
// primary resource (land dig mechanics).
type YieldEntry struct {
	Resource string  `yaml:"resource" json:"resource"`
	Qty      float64 `yaml:"qty" json:"qty"`
}

type ResourceDef struct {
	Key            string       `yaml:"key" json:"key"`
	Label          string       `yaml:"label" json:"label"`
	Land           string       `yaml:"land" json:"land,omitempty"`
	UnlockMinLevel int          `yaml:"unlock_min_level" json:"unlock_min_level"`
	BaseCooldown   int          `yaml:"base_cooldown" json:"base_cooldown"`
	BaseYieldQty   float64      `yaml:"base_yield_qty" json:"base_yield_qty"`
	BaseYieldXP    float64      `yaml:"base_yield_xp" json:"base_yield_xp"`
	BaseSellPrice  int          `yaml:"base_sell_price" json:"base_sell_price"`
	ExtraYields    []YieldEntry `yaml:"extra_yields" json:"extra_yields,omitempty"`
	UnlockRules    *Rule        `yaml:"unlock_rules" json:"unlock_rules,omitempty"`
	Enabled        bool         `yaml:"enabled" json:"enabled"`
}

type LandDef struct {
	Key                string  `yaml:"key" json:"key"`
	Label              string  `yaml:"label" json:"label"`
	AccessCard         string  `yaml:"access_card" json:"access_card,omitempty"`
	Slots              int     `yaml:"slots" json:"slots"`
	SlotBaseCostDiams  int     `yaml:"additional_slot_base_cost_diams" json:"additional_slot_base_cost_diams"`
	SlotCostMultiplier float64 `yaml:"additional_slot_cost_multiplier" json:"additional_slot_cost_multiplier"`
}

// Reward granted when a level is reached.
type Reward struct {
	Type   string  `yaml:"type" json:"type"` // coins | diams | resource | card
	Key    string  `yaml:"key" json:"key,omitempty"`
	Amount float64 `yaml:"amount" json:"amount"`
}

type LevelDef struct {
	Level        int      `yaml:"level" json:"level"`
	XPRequired   float64  `yaml:"xp_required" json:"xp_required"`
	TileCapacity int      `yaml:"tile_capacity" json:"tile_capacity"`
	Rewards      []Reward `yaml:"rewards" json:"rewards,omitempty"`
}

type DailyTier struct {
	MinStreak  int     `yaml:"min_streak" json:"min_streak"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

type DailyConfig struct {
	BaseRewardCoins int         `yaml:"base_reward_coins" json:"base_reward_coins"`
	Tiers           []DailyTier `yaml:"tiers" json:"tiers"`
}

// Store is the process-wide content catalog. It is loaded once at startup
// and never mutated afterwards.
type Store struct {
	Resources map[string]ResourceDef
	Cards     map[string]CardDef
	Recipes   map[string]RecipeDef
	Lands     map[string]LandDef
	Levels    []LevelDef // ascending by level, Levels[i].Level == i+1
	Daily     DailyConfig

	StartingCard string // granted on registration
}

// Resource returns an enabled resource definition.
func (s *Store) Resource(key string) (ResourceDef, bool) {
	rd, ok := s.Resources[key]
	if !ok || !rd.Enabled {
		return ResourceDef{}, false
	}
	return rd, true
}

// Card returns an enabled card definition.
func (s *Store) Card(key string) (CardDef, bool) {
	cd, ok := s.Cards[key]
	if !ok || !cd.Enabled {
		return CardDef{}, false
	}
	return cd, true
}

// Recipe returns the recipe for an item at a craft location.
func (s *Store) Recipe(itemKey, location string) (RecipeDef, bool) {
	rd, ok := s.Recipes[itemKey]
	if !ok || rd.Location != location {
		return RecipeDef{}, false
	}
	return rd, true
}

func (s *Store) Land(key string) (LandDef, bool) {
	ld, ok := s.Lands[key]
	return ld, ok
}

// ResourceList returns enabled resources ordered by unlock level then key.
func (s *Store) ResourceList() []ResourceDef {
	out := make([]ResourceDef, 0, len(s.Resources))
	for _, rd := range s.Resources {
		if rd.Enabled {
			out = append(out, rd)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockMinLevel != out[j].UnlockMinLevel {
			return out[i].UnlockMinLevel < out[j].UnlockMinLevel
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CardList returns enabled cards ordered by key.
func (s *Store) CardList() []CardDef {
	out := make([]CardDef, 0, len(s.Cards))
	for _, cd := range s.Cards {
		if cd.Enabled {
			out = append(out, cd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RecipeList returns recipes for one craft location ordered by item key.
func (s *Store) RecipeList(location string) []RecipeDef {
	out := make([]RecipeDef, 0, len(s.Recipes))
	for _, rd := range s.Recipes {
		if rd.Location == location {
			out = append(out, rd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemKey < out[j].ItemKey })
	return out
}

// DailyMultiplier returns the reward multiplier for a streak value. Tiers
// are matched on the highest min_streak not exceeding the streak.
func (s *Store) DailyMultiplier(streak int) float64 {
	mult := 1.0
	for _, t := range s.Daily.Tiers {
		if streak >= t.MinStreak {
			mult = t.Multiplier
		}
	}
	return mult
}

func (s *Store) validate() error {
	for key, rd := range s.Resources {
		if rd.Key != key {
			return fmt.Errorf("resource %q: key mismatch (%q)", key, rd.Key)
		}
		if rd.BaseCooldown <= 0 {
			return fmt.Errorf("resource %q: base_cooldown must be positive", key)
		}
		if rd.BaseYieldQty <= 0 {
			return fmt.Errorf("resource %q: base_yield_qty must be positive", key)
		}
		if rd.Land != "" {
			if _, ok := s.Lands[rd.Land]; !ok {
				return fmt.Errorf("resource %q: unknown land %q", key, rd.Land)
			}
		}
	}
	for key, cd := range s.Cards {
		if cd.Key != key {
			return fmt.Errorf("card %q: key mismatch (%q)", key, cd.Key)
		}
		for _, eff := range cd.Gameplay.Effects {
			if eff.Op != OpAdd && eff.Op != OpMul {
				return fmt.Errorf("card %q: unknown effect op %q", key, eff.Op)
			}
			if eff.Op == OpMul && eff.Magnitude <= 0 {
				return fmt.Errorf("card %q: mul magnitude must be positive", key)
			}
		}
		if cd.Type == CardLandAccess && cd.Gameplay.LandKey == "" {
			return fmt.Errorf("card %q: land_access card needs gameplay.land_key", key)
		}
	}
	for key, rc := range s.Recipes {
		if rc.ItemKey != key {
			return fmt.Errorf("recipe %q: item_key mismatch (%q)", key, rc.ItemKey)
		}
		if err := rc.check(); err != nil {
			return fmt.Errorf("recipe %q: %w", key, err)
		}
	}
	prev := 0.0
	for i, lv := range s.Levels {
		if lv.Level != i+1 {
			return fmt.Errorf("levels: entry %d has level %d, want %d", i, lv.Level, i+1)
		}
		if lv.XPRequired <= prev {
			return fmt.Errorf("levels: level %d threshold %v not ascending", lv.Level, lv.XPRequired)
		}
		prev = lv.XPRequired
	}
	return nil
}
