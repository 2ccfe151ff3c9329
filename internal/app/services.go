package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/arsip/internal/config"
	"github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/archive"
	"github.com/mwantia/arsip/pkg/db/store"
	"github.com/mwantia/arsip/pkg/log"
	"github.com/mwantia/arsip/pkg/settings"
)

// Archiver is the backup surface registered with the container.
type Archiver interface {
	Create(ctx context.Context, destination string) (*archive.CreateResult, error)
	Restore(ctx context.Context, source string, opts archive.RestoreOptions) (*archive.RestoreResult, error)
}

var _ Archiver = (*backupService)(nil)

// backupService wraps the archive engine. It never opens the live store on
// its own; Restore replaces the file underneath and only needs it unused.
type backupService struct {
	Config *config.BaseConfig `fabric:"inject"`
	Log    log.LoggerService  `fabric:"logger:archive"`

	engine *archive.Engine
}

func (b *backupService) Init(ctx context.Context) error {
	engine, err := archive.New(archive.Config{
		StorePath:  b.Config.StorePath(),
		ScratchDir: b.Config.ScratchDir(),
		Open:       openStore,
		Probe:      probeStore,
		Logger:     b.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to create archive engine: %w", err)
	}

	b.engine = engine
	return nil
}

func (b *backupService) Cleanup(ctx context.Context) error {
	return nil
}

func (b *backupService) Create(ctx context.Context, destination string) (*archive.CreateResult, error) {
	return b.engine.Create(ctx, destination)
}

func (b *backupService) Restore(ctx context.Context, source string, opts archive.RestoreOptions) (*archive.RestoreResult, error) {
	if store.InUse(b.engine.StorePath()) {
		return nil, fmt.Errorf("%w: records are still open in this process", archive.ErrStoreLocked)
	}
	return b.engine.Restore(ctx, source, opts)
}

// recordService owns the live store while records are in use. The container
// opens it on first resolution and closes it on cleanup.
type recordService struct {
	Config   *config.BaseConfig `fabric:"inject"`
	Settings *settings.Settings `fabric:"inject"`
	Log      log.LoggerService  `fabric:"logger:records"`

	store   *store.SQLiteStore
	service *records.Service
}

func (r *recordService) Init(ctx context.Context) error {
	path := r.Config.StorePath()

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:     path,
		LogLevel: store.ParseLogLevel(r.Config.Store.LogLevel),
	})
	if err != nil {
		return err
	}
	if err := st.Connect(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to migrate %s: %w", path, err)
	}

	svc, err := records.New(records.Config{
		Store:   st,
		Folders: r.Settings,
		Logger:  r.Log,
	})
	if err != nil {
		st.Close()
		return err
	}

	r.store = st
	r.service = svc
	return nil
}

func (r *recordService) Cleanup(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, path string) (archive.Store, error) {
	s, err := store.OpenSQLiteStore(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func probeStore(ctx context.Context, path string) error {
	err := store.CheckUnlocked(ctx, path)
	if errors.Is(err, store.ErrLocked) {
		return fmt.Errorf("%w: %v", archive.ErrStoreLocked, err)
	}
	return err
}
