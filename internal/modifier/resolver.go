// Package modifier turns a player's card collection into the effect bundle
// every engine consults before mutating state. Resolution is a pure
// function of card ownership; the bundle has no side effects.
package modifier

import (
	"math"

	"github.com/ReC82/LodyLand/internal/content"
)

type statKey struct {
	stat   content.Stat
	target string // resource key, "" = global
}

type combined struct {
	addSum  float64
	mulProd float64
}

// Bundle is the resolved effect set for one player at one point in time.
type Bundle struct {
	effects    map[statKey]combined
	slotBonus  int
	tableLevel int
	landAccess map[string]bool
	owned      map[string]int
}

// Resolve aggregates all owned cards into a Bundle. Each owned copy
// contributes its effects once: additive magnitudes sum, multiplicative
// magnitudes compound.
func Resolve(owned map[string]int, defs func(key string) (content.CardDef, bool)) Bundle {
	b := Bundle{
		effects:    map[statKey]combined{},
		tableLevel: 1,
		landAccess: map[string]bool{},
		owned:      owned,
	}

	for cardKey, qty := range owned {
		if qty <= 0 {
			continue
		}
		def, ok := defs(cardKey)
		if !ok {
			continue
		}

		for _, eff := range def.Gameplay.Effects {
			k := statKey{stat: eff.Stat, target: eff.Target}
			c, seen := b.effects[k]
			if !seen {
				c = combined{mulProd: 1}
			}
			switch eff.Op {
			case content.OpAdd:
				c.addSum += eff.Magnitude * float64(qty)
			case content.OpMul:
				c.mulProd *= math.Pow(eff.Magnitude, float64(qty))
			}
			b.effects[k] = c
		}

		if def.Gameplay.SlotBonus > 0 {
			b.slotBonus += def.Gameplay.SlotBonus * qty
		}
		if def.Gameplay.TableLevel > b.tableLevel {
			b.tableLevel = def.Gameplay.TableLevel
		}
		if def.Type == content.CardLandAccess && def.Gameplay.LandKey != "" {
			b.landAccess[def.Gameplay.LandKey] = true
		}
	}

	return b
}

// factor combines the add and mul parts for one (stat, target) pair:
// (1 + sum of add effects) × product of mul effects.
func (b Bundle) factor(stat content.Stat, target string) float64 {
	c, ok := b.effects[statKey{stat: stat, target: target}]
	if !ok {
		return 1
	}
	return (1 + c.addSum) * c.mulProd
}

// stacked applies the fixed stacking order: global effects first, then
// resource-specific ones, combined multiplicatively.
func (b Bundle) stacked(stat content.Stat, resource string) float64 {
	f := b.factor(stat, "")
	if resource != "" {
		f *= b.factor(stat, resource)
	}
	return f
}

// YieldMultiplier returns the combined yield factor for a resource.
func (b Bundle) YieldMultiplier(resource string) float64 {
	return b.stacked(content.StatYield, resource)
}

// CooldownMultiplier returns the combined cooldown factor for a resource
// (values below 1 shorten the wait). Clamped so a cooldown never reaches
// zero through card stacking.
func (b Bundle) CooldownMultiplier(resource string) float64 {
	f := b.stacked(content.StatCooldown, resource)
	if f < 0.05 {
		return 0.05
	}
	return f
}

// XPMultiplier returns the global XP gain factor.
func (b Bundle) XPMultiplier() float64 {
	return b.factor(content.StatXP, "")
}

// SellPriceMultiplier returns the combined sale price factor for a resource.
func (b Bundle) SellPriceMultiplier(resource string) float64 {
	return b.stacked(content.StatSellPrice, resource)
}

// CraftSpeedMultiplier returns the global craft speed factor (values above
// 1 shorten craft jobs). Never below 1 so cards cannot slow crafting.
func (b Bundle) CraftSpeedMultiplier() float64 {
	f := b.factor(content.StatCraftSpeed, "")
	if f < 1 {
		return 1
	}
	return f
}

// CraftSlotBonus returns extra simultaneous craft job slots from cards.
func (b Bundle) CraftSlotBonus() int { return b.slotBonus }

// TableLevel returns the craft table level derived from upgrade cards.
func (b Bundle) TableLevel() int { return b.tableLevel }

// HasLandAccess reports whether the player holds the land's access deed.
// Lands without an access card are open to everyone.
func (b Bundle) HasLandAccess(land content.LandDef) bool {
	if land.AccessCard == "" {
		return true
	}
	return b.landAccess[land.Key] || b.owned[land.AccessCard] > 0
}

// HasCard reports ownership of at least one copy of a card.
func (b Bundle) HasCard(key string) bool { return b.owned[key] > 0 }
