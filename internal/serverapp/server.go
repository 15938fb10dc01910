// Package serverapp assembles the full HTTP application: config, content,
// storage backend, engine, auth and middleware.
package serverapp

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ReC82/LodyLand/internal/auth"
	"github.com/ReC82/LodyLand/internal/config"
	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/game"
	"github.com/ReC82/LodyLand/internal/httpmw"
	"github.com/ReC82/LodyLand/internal/progression"
	"github.com/ReC82/LodyLand/internal/server"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
	Clock  game.Clock
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	cfg := opts.Config

	store := content.Default()
	if strings.TrimSpace(cfg.ContentDir) != "" {
		loaded, err := content.Load(cfg.ContentDir)
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		store = loaded
	}

	var repo state.Repository
	switch cfg.Storage {
	case config.StorageMemory:
		repo = state.NewMemoryRepo()
	case config.StorageFile:
		fileRepo, err := state.NewFileRepo(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		repo = fileRepo
	case config.StorageSQLite:
		sqlRepo, err := state.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		repo = sqlRepo
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	events := telemetry.NewMemoryRepository()
	engine := game.Engine{
		State:   repo,
		Content: store,
		Ledger:  progression.NewLedger(store),
		Events:  events,
		Clock:   opts.Clock,
	}

	authService := auth.NewService(time.Duration(cfg.SessionTTLHours) * time.Hour)

	api := &server.API{
		Engine: engine,
		Auth:   authService,
		Events: events,
		Logger: opts.Logger,
	}

	return httpmw.Chain(
		api.Router(),
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}
