package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileState struct {
	NextID  int64                 `json:"next_id"`
	Players map[int64]PlayerState `json:"players"`
}

// FileRepo persists every aggregate into a single JSON file under the data
// directory. Writes happen synchronously under one lock; fine for the
// single-node deployments this server targets.
type FileRepo struct {
	mu   sync.Mutex
	path string
	s    fileState
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "players.json"),
		s:    fileState{NextID: 1, Players: map[int64]PlayerState{}},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Players == nil {
		loaded.Players = map[int64]PlayerState{}
	}
	for id, ps := range loaded.Players {
		ps.normalize()
		loaded.Players[id] = ps
	}
	if loaded.NextID < 1 {
		loaded.NextID = 1
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *FileRepo) findByNameLocked(name string) (int64, bool) {
	for id, ps := range r.s.Players {
		if ps.Player.Name == name {
			return id, true
		}
	}
	return 0, false
}

func (r *FileRepo) Create(ctx context.Context, name string) (PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findByNameLocked(name); ok {
		return PlayerState{}, ErrNameTaken
	}
	id := r.s.NextID
	r.s.NextID++
	ps := NewPlayerState(Player{ID: id, Name: name, CreatedAt: time.Now().UTC()})
	r.s.Players[id] = ps
	if err := r.saveLocked(); err != nil {
		delete(r.s.Players, id)
		r.s.NextID = id
		return PlayerState{}, err
	}
	return ps.Clone(), nil
}

func (r *FileRepo) Get(ctx context.Context, id int64) (PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.s.Players[id]
	if !ok {
		return PlayerState{}, ErrNotFound
	}
	return ps.Clone(), nil
}

func (r *FileRepo) FindByName(ctx context.Context, name string) (PlayerState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.findByNameLocked(name)
	if !ok {
		return PlayerState{}, false, nil
	}
	return r.s.Players[id].Clone(), true, nil
}

func (r *FileRepo) Update(ctx context.Context, id int64, fn func(*PlayerState) error) (PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.s.Players[id]
	if !ok {
		return PlayerState{}, ErrNotFound
	}
	work := ps.Clone()
	if err := fn(&work); err != nil {
		return PlayerState{}, err
	}
	// A failed flush rolls the map entry back so memory never drifts
	// ahead of the file.
	r.s.Players[id] = work
	if err := r.saveLocked(); err != nil {
		r.s.Players[id] = ps
		return PlayerState{}, err
	}
	return work.Clone(), nil
}
