// Package state persists the per-player row set: player stats, tiles,
// inventory, card ownership, craft jobs and land slots. Every mutation goes
// through Repository.Update, which runs the mutation on a private copy and
// commits only when it returns nil. Concurrent updates for the same player
// serialize; different players proceed independently.
package state

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("player not found")
	ErrNameTaken = errors.New("player name already taken")
)

type Player struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Coins       int        `json:"coins"`
	Diams       int        `json:"diams"`
	XP          float64    `json:"xp"`
	Level       int        `json:"level"`
	LastDaily   *time.Time `json:"last_daily,omitempty"`
	DailyStreak int        `json:"daily_streak"`
	BestStreak  int        `json:"best_streak"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Tile struct {
	ID            int        `json:"id"`
	Resource      string     `json:"resource"`
	Locked        bool       `json:"locked"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobClaimed JobStatus = "claimed"
)

type CraftJob struct {
	ID        string        `json:"id"`
	ItemKey   string        `json:"item_key"`
	OutputQty int           `json:"output_qty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Status    JobStatus     `json:"status"`
}

// ReadyAt is the instant the job finishes.
func (j CraftJob) ReadyAt() time.Time { return j.StartedAt.Add(j.Duration) }

// PlayerState is the full aggregate owned by one player.
type PlayerState struct {
	Player    Player             `json:"player"`
	Tiles     []Tile             `json:"tiles"`
	Stocks    map[string]float64 `json:"stocks"`    // resource key -> quantity
	Items     map[string]int     `json:"items"`     // crafted item key -> quantity
	Cards     map[string]int     `json:"cards"`     // card key -> owned qty
	Purchases map[string]int     `json:"purchases"` // card key -> lifetime buys
	Jobs      []CraftJob         `json:"jobs"`
	LandSlots map[string]int     `json:"land_slots"` // land key -> extra slots
	NextTile  int                `json:"next_tile"`
}

// NewPlayerState returns an initialized aggregate for a fresh player.
func NewPlayerState(p Player) PlayerState {
	return PlayerState{
		Player:    p,
		Stocks:    map[string]float64{},
		Items:     map[string]int{},
		Cards:     map[string]int{},
		Purchases: map[string]int{},
		LandSlots: map[string]int{},
		NextTile:  1,
	}
}

// Clone returns a deep copy, so a failed mutation never leaks into the
// committed state.
func (s PlayerState) Clone() PlayerState {
	out := s
	out.Tiles = append([]Tile(nil), s.Tiles...)
	out.Jobs = append([]CraftJob(nil), s.Jobs...)
	out.Stocks = cloneFloatMap(s.Stocks)
	out.Items = cloneIntMap(s.Items)
	out.Cards = cloneIntMap(s.Cards)
	out.Purchases = cloneIntMap(s.Purchases)
	out.LandSlots = cloneIntMap(s.LandSlots)
	return out
}

// normalize repairs nil maps after JSON or SQL round trips.
func (s *PlayerState) normalize() {
	if s.Stocks == nil {
		s.Stocks = map[string]float64{}
	}
	if s.Items == nil {
		s.Items = map[string]int{}
	}
	if s.Cards == nil {
		s.Cards = map[string]int{}
	}
	if s.Purchases == nil {
		s.Purchases = map[string]int{}
	}
	if s.LandSlots == nil {
		s.LandSlots = map[string]int{}
	}
	if s.NextTile < 1 {
		s.NextTile = 1
	}
}

// Tile returns a pointer into the aggregate's tile slice, or nil.
func (s *PlayerState) Tile(id int) *Tile {
	for i := range s.Tiles {
		if s.Tiles[i].ID == id {
			return &s.Tiles[i]
		}
	}
	return nil
}

// Job returns a pointer into the aggregate's job slice, or nil.
func (s *PlayerState) Job(id string) *CraftJob {
	for i := range s.Jobs {
		if s.Jobs[i].ID == id {
			return &s.Jobs[i]
		}
	}
	return nil
}

// TilesInLand counts unlocked tiles bound to resources of one land.
func (s *PlayerState) TilesInLand(resourceLand func(resource string) string, land string) int {
	n := 0
	for _, t := range s.Tiles {
		if resourceLand(t.Resource) == land {
			n++
		}
	}
	return n
}

func cloneFloatMap(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneIntMap(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Repository is the persistence contract the engines run against.
type Repository interface {
	// Create registers a new player aggregate under a unique name.
	Create(ctx context.Context, name string) (PlayerState, error)
	// Get returns a snapshot copy of a player's aggregate.
	Get(ctx context.Context, id int64) (PlayerState, error)
	// FindByName returns a snapshot copy looked up by player name.
	FindByName(ctx context.Context, name string) (PlayerState, bool, error)
	// Update applies fn to a private copy of the aggregate under the
	// player's writer lock and commits it when fn returns nil. A non-nil
	// error from fn aborts the transaction with no observable change.
	Update(ctx context.Context, id int64, fn func(*PlayerState) error) (PlayerState, error)
}
