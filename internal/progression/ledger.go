// Package progression maps accumulated XP to levels and level-up rewards.
package progression

import (
	"github.com/ReC82/LodyLand/internal/content"
)

// Ledger answers level questions from the content level table. Level 0 is
// implicit at 0 XP; content levels start at 1.
type Ledger struct {
	levels []content.LevelDef
}

func NewLedger(store *content.Store) *Ledger {
	return &Ledger{levels: store.Levels}
}

// LevelForXP returns the highest level whose threshold the XP total meets.
func (l *Ledger) LevelForXP(xp float64) int {
	level := 0
	for _, lv := range l.levels {
		if xp >= lv.XPRequired {
			level = lv.Level
		} else {
			break
		}
	}
	return level
}

// NextThreshold returns the XP required for the next level, or nil at the
// max defined level.
func (l *Ledger) NextThreshold(level int) *float64 {
	if level >= len(l.levels) {
		return nil
	}
	xp := l.levels[level].XPRequired
	return &xp
}

// MaxLevel returns the highest defined level.
func (l *Ledger) MaxLevel() int { return len(l.levels) }

// TileCapacity returns how many tiles a player of the given level may own.
func (l *Ledger) TileCapacity(level int) int {
	capacity := content.BaseTileCapacity
	for _, lv := range l.levels {
		if lv.Level > level {
			break
		}
		if lv.TileCapacity > 0 {
			capacity = lv.TileCapacity
		}
	}
	return capacity
}

// RewardsBetween collects the rewards of every level crossed when moving
// from oldLevel (exclusive) to newLevel (inclusive), tagged with the level
// that granted them.
func (l *Ledger) RewardsBetween(oldLevel, newLevel int) []AppliedReward {
	var out []AppliedReward
	for _, lv := range l.levels {
		if lv.Level <= oldLevel || lv.Level > newLevel {
			continue
		}
		for _, r := range lv.Rewards {
			out = append(out, AppliedReward{Level: lv.Level, Type: r.Type, Key: r.Key, Amount: r.Amount})
		}
	}
	return out
}

// AppliedReward is one level-up grant as reported to the caller.
type AppliedReward struct {
	Level  int     `json:"level"`
	Type   string  `json:"type"`
	Key    string  `json:"key,omitempty"`
	Amount float64 `json:"amount"`
}
