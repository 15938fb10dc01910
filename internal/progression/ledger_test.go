package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReC82/LodyLand/internal/content"
)

func testLedger() *Ledger {
	return NewLedger(content.Default())
}

func TestLevelForXP(t *testing.T) {
	l := testLedger()

	assert.Equal(t, 0, l.LevelForXP(0))
	assert.Equal(t, 0, l.LevelForXP(9.9))
	assert.Equal(t, 1, l.LevelForXP(10))
	assert.Equal(t, 1, l.LevelForXP(29.5))
	assert.Equal(t, 2, l.LevelForXP(30))
	assert.Equal(t, 5, l.LevelForXP(150))
	assert.Equal(t, 5, l.LevelForXP(100000))
}

func TestNextThreshold(t *testing.T) {
	l := testLedger()

	next := l.NextThreshold(0)
	require.NotNil(t, next)
	assert.Equal(t, 10.0, *next)

	next = l.NextThreshold(2)
	require.NotNil(t, next)
	assert.Equal(t, 60.0, *next)

	assert.Nil(t, l.NextThreshold(5))
	assert.Equal(t, 5, l.MaxLevel())
}

func TestTileCapacity(t *testing.T) {
	l := testLedger()

	assert.Equal(t, content.BaseTileCapacity, l.TileCapacity(0))
	assert.Equal(t, 4, l.TileCapacity(1))
	assert.Equal(t, 6, l.TileCapacity(2))
	assert.Equal(t, 12, l.TileCapacity(5))
	assert.Equal(t, 12, l.TileCapacity(9))
}

func TestRewardsBetween(t *testing.T) {
	l := testLedger()

	assert.Empty(t, l.RewardsBetween(1, 1))
	assert.Empty(t, l.RewardsBetween(3, 2))

	one := l.RewardsBetween(0, 1)
	require.Len(t, one, 1)
	assert.Equal(t, 1, one[0].Level)
	assert.Equal(t, "coins", one[0].Type)
	assert.Equal(t, 5.0, one[0].Amount)

	// Jumping several levels grants every crossed level's rewards in order.
	span := l.RewardsBetween(1, 4)
	require.Len(t, span, 5)
	assert.Equal(t, 2, span[0].Level)
	assert.Equal(t, 2, span[1].Level)
	assert.Equal(t, "resource", span[1].Type)
	assert.Equal(t, "branch", span[1].Key)
	assert.Equal(t, 3, span[2].Level)
	assert.Equal(t, "diams", span[2].Type)
	assert.Equal(t, 4, span[3].Level)
	assert.Equal(t, "card", span[4].Type)
	assert.Equal(t, "boost_cooldown_all", span[4].Key)
}

func TestTileCapacityWithSparseTable(t *testing.T) {
	s := content.Default()
	s.Levels = []content.LevelDef{
		{Level: 1, XPRequired: 10, TileCapacity: 4},
		{Level: 2, XPRequired: 30}, // no capacity change
		{Level: 3, XPRequired: 60, TileCapacity: 8},
	}
	l := NewLedger(s)

	assert.Equal(t, 4, l.TileCapacity(2))
	assert.Equal(t, 8, l.TileCapacity(3))
}
