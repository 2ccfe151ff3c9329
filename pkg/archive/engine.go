// Package archive packs the record database together with every attachment
// it references into a single zip container, and restores such a container
// onto a (possibly different) installation.
package archive

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/log"
)

// Store is the slice of the record store the engine needs.
type Store interface {
	SelectAttachments(ctx context.Context) ([]models.Attachment, error)
	UpdateAttachmentPaths(ctx context.Context, updates []models.PathUpdate) error
	Close() error
}

// OpenFunc opens a short-lived connection to the store at path.
type OpenFunc func(ctx context.Context, path string) (Store, error)

// ProbeFunc reports ErrStoreLocked when another connection holds the store at
// path. Any other error is logged and the restore carries on.
type ProbeFunc func(ctx context.Context, path string) error

// Config holds the settings New builds an Engine from.
type Config struct {
	StorePath  string
	ScratchDir string // defaults to temp_restore_data next to StorePath

	Open  OpenFunc
	Probe ProbeFunc

	Fs     afero.Fs
	Logger log.LoggerService
}

// Roots are the directories restored attachments are relocated into.
type Roots struct {
	UploadRoot   string
	DocumentRoot string // defaults to UploadRoot/dokumen
}

func (r Roots) normalize() (Roots, error) {
	if r.UploadRoot == "" {
		return r, errors.New("upload root is required")
	}
	if r.DocumentRoot == "" {
		r.DocumentRoot = filepath.Join(r.UploadRoot, "dokumen")
	}

	var err error
	if r.UploadRoot, err = filepath.Abs(r.UploadRoot); err != nil {
		return r, err
	}
	if r.DocumentRoot, err = filepath.Abs(r.DocumentRoot); err != nil {
		return r, err
	}
	return r, nil
}

// CreateResult describes a written archive. SkippedCount counts records
// whose attachment was missing or not a regular file or directory.
type CreateResult struct {
	FilePath     string
	SizeBytes    int64
	ItemCount    int
	SkippedCount int
	Duration     time.Duration
}

// RestoreResult lists the path rewrites applied to the restored store.
type RestoreResult struct {
	Relocated    []models.PathUpdate
	IgnoredCount int
	Duration     time.Duration

	// The running application keeps stale state from before the restore.
	RestartRequired bool
}

// RestoreOptions must carry Confirmed; Restore is destructive.
type RestoreOptions struct {
	Confirmed bool
	Roots     Roots
}

// Engine creates and restores archives for one store file.
type Engine struct {
	storePath  string
	scratchDir string
	open       OpenFunc
	probe      ProbeFunc
	fs         afero.Fs
	log        log.LoggerService
}

// New validates cfg and fills in the defaults for the scratch directory,
// filesystem and logger.
func New(cfg Config) (*Engine, error) {
	if cfg.StorePath == "" {
		return nil, errors.New("store path is required")
	}
	if cfg.Open == nil {
		return nil, errors.New("store opener is required")
	}

	storePath, err := filepath.Abs(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(filepath.Dir(storePath), "temp_restore_data")
	}

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Engine{
		storePath:  storePath,
		scratchDir: scratch,
		open:       cfg.Open,
		probe:      cfg.Probe,
		fs:         fs,
		log:        logger,
	}, nil
}

// StorePath is the absolute path of the live store file.
func (e *Engine) StorePath() string {
	return e.storePath
}

func (e *Engine) ScratchDir() string {
	return e.scratchDir
}
