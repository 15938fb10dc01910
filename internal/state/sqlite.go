package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteRepo stores one JSON aggregate per player row. The pool is pinned to
// a single connection, so read-modify-write transactions serialize at the
// database.
type SQLiteRepo struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error { return r.db.Close() }

func (r *SQLiteRepo) Create(ctx context.Context, name string) (PlayerState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return PlayerState{}, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE name = ?`, name).Scan(&n); err != nil {
		return PlayerState{}, err
	}
	if n > 0 {
		return PlayerState{}, ErrNameTaken
	}

	now := time.Now().UTC()
	ps := NewPlayerState(Player{Name: name, CreatedAt: now})
	b, err := json.Marshal(ps)
	if err != nil {
		return PlayerState{}, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO players (name, state, updated_at) VALUES (?, ?, ?)`,
		name, string(b), now.Format(time.RFC3339Nano))
	if err != nil {
		return PlayerState{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PlayerState{}, err
	}
	ps.Player.ID = id
	b, err = json.Marshal(ps)
	if err != nil {
		return PlayerState{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE players SET state = ? WHERE id = ?`, string(b), id); err != nil {
		return PlayerState{}, err
	}
	if err := tx.Commit(); err != nil {
		return PlayerState{}, err
	}
	return ps, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (PlayerState, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM players WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerState{}, ErrNotFound
	}
	if err != nil {
		return PlayerState{}, err
	}
	return decodeState(raw)
}

func (r *SQLiteRepo) FindByName(ctx context.Context, name string) (PlayerState, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM players WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerState{}, false, nil
	}
	if err != nil {
		return PlayerState{}, false, err
	}
	ps, err := decodeState(raw)
	if err != nil {
		return PlayerState{}, false, err
	}
	return ps, true, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, fn func(*PlayerState) error) (PlayerState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return PlayerState{}, err
	}
	defer tx.Rollback()

	// With max open conns pinned to 1 the read below and the write share a
	// connection, so the read-modify-write pair cannot interleave.
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT state FROM players WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerState{}, ErrNotFound
	}
	if err != nil {
		return PlayerState{}, err
	}
	ps, err := decodeState(raw)
	if err != nil {
		return PlayerState{}, err
	}
	if err := fn(&ps); err != nil {
		return PlayerState{}, err
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return PlayerState{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE players SET state = ?, updated_at = ? WHERE id = ?`,
		string(b), time.Now().UTC().Format(time.RFC3339Nano), id); err != nil {
		return PlayerState{}, err
	}
	if err := tx.Commit(); err != nil {
		return PlayerState{}, err
	}
	return ps, nil
}

func decodeState(raw string) (PlayerState, error) {
	var ps PlayerState
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return PlayerState{}, err
	}
	ps.normalize()
	return ps, nil
}
