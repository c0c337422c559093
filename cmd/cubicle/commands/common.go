package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/build"
	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/kv"
	"github.com/cubicool/cubicle/internal/sim"
	"github.com/cubicool/cubicle/internal/world"
)

// simStartTime is the simulation epoch used when no snapshot carries a
// clock.
var simStartTime = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

// resolveDBPath expands the --db flag, defaulting to ~/.cubicle/cubicle.db.
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".cubicle", "cubicle.db"), nil
}

// setupLogging builds the shared log manager and hands each subsystem its
// logger.
func setupLogging() (*build.LogManager, error) {
	cfg := build.DefaultLogConfig()
	cfg.Level = logLevel
	cfg.File = logFile

	mgr, err := build.NewLogManager(cfg)
	if err != nil {
		return nil, err
	}

	actor.UseLogger(mgr.Logger(actor.Subsystem))
	gen.UseLogger(mgr.Logger(gen.Subsystem))
	sim.UseLogger(mgr.Logger(sim.Subsystem))
	kv.UseLogger(mgr.Logger(kv.Subsystem))

	return mgr, nil
}

// openGateway builds the Gemini gateway from the --api-key flag or the
// GEMINI_API_KEY environment variable.
func openGateway(ctx context.Context) (gen.Gateway, error) {
	key := apiKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, errors.New("no API key: set --api-key or " +
			"GEMINI_API_KEY")
	}

	cfg := gen.DefaultGeminiConfig()
	cfg.APIKey = key

	return gen.NewGeminiGateway(ctx, cfg)
}

// loadWorld builds a store and restores the autosave slot when one exists.
// A missing autosave yields a fresh world at the simulation epoch.
func loadWorld(ctx context.Context,
	snapshots *kv.SnapshotStore) (*world.Store, error) {

	store := world.NewStore(world.NewClock(simStartTime))

	snap, err := snapshots.Load(ctx, kv.AutosaveSlot)
	if errors.Is(err, kv.ErrSnapshotNotFound) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	if err := store.Import(snap); err != nil {
		return nil, fmt.Errorf("restore autosave: %w", err)
	}

	return store, nil
}
