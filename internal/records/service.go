package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/db/store"
	"github.com/mwantia/arsip/pkg/fsutil"
	"github.com/mwantia/arsip/pkg/log"
)

var (
	ErrMissingField    = errors.New("required field is empty")
	ErrInvalidCategory = errors.New("invalid category")
)

const dateLayout = "2006-01-02"

// Folders resolves where attachments of each category are kept.
type Folders interface {
	FolderPath(category models.Category) string
	DocumentRoot() string
}

type Config struct {
	Store   store.RecordStore
	Folders Folders
	Fs      afero.Fs
	Logger  log.LoggerService
	Clock   func() time.Time
}

// Service manages records together with the files they point to.
type Service struct {
	store   store.RecordStore
	folders Folders
	fs      afero.Fs
	log     log.LoggerService
	now     func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("record store is required")
	}
	if cfg.Folders == nil {
		return nil, errors.New("folder settings are required")
	}

	svc := &Service{
		store:   cfg.Store,
		folders: cfg.Folders,
		fs:      cfg.Fs,
		log:     cfg.Logger,
		now:     cfg.Clock,
	}
	if svc.fs == nil {
		svc.fs = afero.NewOsFs()
	}
	if svc.log == nil {
		svc.log = log.Discard()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

func (s *Service) List(ctx context.Context, filter store.RecordFilter) ([]models.Record, error) {
	if filter.Category != "" {
		if _, ok := models.ParseCategory(string(filter.Category)); !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, filter.Category)
		}
	}
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.store.ListRecords(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Record, error) {
	return s.store.GetRecord(ctx, id)
}

// Stats counts records per category. Every category is present.
func (s *Service) Stats(ctx context.Context) (map[models.Category]int64, error) {
	return s.store.CountByCategory(ctx)
}

// Delete removes the record and, when still present, its file or folder.
// Failing to remove the attachment is logged and does not stop the delete.
func (s *Service) Delete(ctx context.Context, id uint) error {
	record, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load record %d: %w", id, err)
	}

	if path := record.Attachment(); path != "" {
		var rmErr error
		if record.Category == models.CategoryDocument {
			rmErr = s.fs.RemoveAll(path)
		} else {
			rmErr = s.fs.Remove(path)
		}
		if rmErr != nil && !fsutil.IsNotExist(rmErr) {
			s.log.Warn("Unable to remove attachment of record %d: %v", id, rmErr)
		}
	}

	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	s.log.Info("Deleted record %d", id)
	return nil
}
