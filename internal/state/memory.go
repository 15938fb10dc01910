package state

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps every aggregate in process memory. Handy for tests and
// for running the server without a data directory.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]PlayerState
	byName  map[string]int64
	playerM map[int64]*sync.Mutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:  1,
		byID:    map[int64]PlayerState{},
		byName:  map[string]int64{},
		playerM: map[int64]*sync.Mutex{},
	}
}

func (r *MemoryRepo) Create(ctx context.Context, name string) (PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return PlayerState{}, ErrNameTaken
	}
	id := r.nextID
	r.nextID++
	ps := NewPlayerState(Player{ID: id, Name: name, CreatedAt: time.Now().UTC()})
	r.byID[id] = ps
	r.byName[name] = id
	r.playerM[id] = &sync.Mutex{}
	return ps.Clone(), nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.byID[id]
	if !ok {
		return PlayerState{}, ErrNotFound
	}
	return ps.Clone(), nil
}

func (r *MemoryRepo) FindByName(ctx context.Context, name string) (PlayerState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	if !ok {
		return PlayerState{}, false, nil
	}
	return r.byID[id].Clone(), true, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, fn func(*PlayerState) error) (PlayerState, error) {
	r.mu.Lock()
	lock, ok := r.playerM[id]
	r.mu.Unlock()
	if !ok {
		return PlayerState{}, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	work := r.byID[id].Clone()
	r.mu.Unlock()

	if err := fn(&work); err != nil {
		return PlayerState{}, err
	}

	r.mu.Lock()
	r.byID[id] = work
	r.mu.Unlock()
	return work.Clone(), nil
}
