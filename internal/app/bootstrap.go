// Package app wires together the config, logging, storage and disk
// packages into the handles a worker binary's main needs. It exists so
// cmd/downloader, cmd/transcriber, cmd/tokenizer, cmd/analyzer,
// cmd/selector and cmd/queuectl don't each repeat the same
// open-config/open-db/build-monitor boilerplate.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aoi-sora/animepipe/config"
	"github.com/aoi-sora/animepipe/disk"
	"github.com/aoi-sora/animepipe/logging"
	"github.com/aoi-sora/animepipe/paths"
	"github.com/aoi-sora/animepipe/store"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// App bundles the handles shared by every worker binary.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	DB      *bun.DB
	Paths   *paths.Tree
	Monitor *disk.Monitor

	Pusher   *store.Pusher
	Puller   *store.Puller
	Observer *store.Observer
	Cleaner  *store.Cleaner
}

// Bootstrap loads configPath (falling back to defaults if absent),
// builds the managed data tree, opens and migrates the database, and
// constructs the disk monitor, logger and storage interfaces.
func Bootstrap(ctx context.Context, configPath, component string, verbose bool) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	if verbose {
		cfg.Logging.DefaultLevel = "debug"
	}

	tree := paths.NewTree(cfg.Data.RootDir)
	if err := tree.EnsureDirs(func(path string, perm uint32) error {
		return os.MkdirAll(path, os.FileMode(perm))
	}); err != nil {
		return nil, fmt.Errorf("app: ensure data tree: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.LogDir = cfg.ResolvePath(logCfg.LogDir)
	log := logging.New(logCfg, component)

	// Pragmas go in the DSN so every pooled connection gets them, not
	// just the one a bare Exec happens to land on.
	dsn := "file:" + cfg.ResolvePath(cfg.Database.Path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("app: open database: %w", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())

	if err := store.InitDB(ctx, db); err != nil {
		return nil, fmt.Errorf("app: init schema: %w", err)
	}

	dm := cfg.DiskManagement
	monitor := disk.NewMonitor(disk.Config{
		Root:           cfg.Data.RootDir,
		HardLimitBytes: dm.HardLimitGB * gigabyte,
		PauseBytes:     dm.PauseThresholdGB * gigabyte,
		ResumeBytes:    dm.ResumeThresholdGB * gigabyte,
		CacheDuration:  time.Duration(dm.CacheDurationSeconds) * time.Second,
	})

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Paths:    tree,
		Monitor:  monitor,
		Pusher:   store.NewPusher(db),
		Puller:   store.NewPuller(db),
		Observer: store.NewObserver(db),
		Cleaner:  store.NewCleaner(db),
	}, nil
}

const gigabyte = 1 << 30

// Close releases resources held by the App.
func (a *App) Close() error {
	return a.DB.Close()
}

// WritePlaceholder creates a zero-byte file at path, creating parent
// directories as needed. Used by --dry-run stage handlers in place of
// invoking the real external tool, so a dry run still leaves the stage
// machine in the same final shape as a live run.
func WritePlaceholder(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}
