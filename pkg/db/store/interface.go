package store

import (
	"context"
	"errors"

	"github.com/mwantia/arsip/pkg/db/models"
)

var (
	ErrLocked        = errors.New("database file is in use")
	ErrDuplicateCode = errors.New("reference code already exists")
)

// RecordFilter narrows ListRecords. Zero values mean "no restriction".
type RecordFilter struct {
	Category models.Category
	Keyword  string
	Limit    int
	Offset   int
}

// RecordStore defines the interface for database operations
type RecordStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error
	Path() string

	// Record operations
	CreateRecord(ctx context.Context, record *models.Record) error
	GetRecord(ctx context.Context, id uint) (*models.Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]models.Record, error)
	UpdateRecord(ctx context.Context, record *models.Record) error
	DeleteRecord(ctx context.Context, id uint) error
	CountByCategory(ctx context.Context) (map[models.Category]int64, error)

	// Attachment operations used by backup and restore
	SelectAttachments(ctx context.Context) ([]models.Attachment, error)
	UpdateAttachmentPaths(ctx context.Context, updates []models.PathUpdate) error

	// Reference code operations
	CreateCode(ctx context.Context, code *models.ReferenceCode) error
	UpdateCode(ctx context.Context, code *models.ReferenceCode) error
	ListCodes(ctx context.Context) ([]models.ReferenceCode, error)
	DeleteCode(ctx context.Context, id uint) error
}
