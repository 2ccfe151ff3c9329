package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/arsip/pkg/db/migrations"
	"github.com/mwantia/arsip/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ RecordStore = (*SQLiteStore)(nil)

const defaultBusyTimeout = 5 * time.Second

// SQLiteStore implements RecordStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string

	closeOnce sync.Once
	closeErr  error
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path        string
	LogLevel    logger.LogLevel
	BusyTimeout time.Duration
}

// ParseLogLevel maps a configured name onto a GORM log level
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	default:
		return logger.Silent
	}
}

// NewSQLiteStore creates a new SQLite-backed record store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = defaultBusyTimeout
	}

	db, err := open(cfg.Path, cfg.BusyTimeout, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	acquire(cfg.Path)
	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// OpenSQLiteStore opens and connects the store at path without running migrations
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	s, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect sqlite database: %w", err)
	}
	return s, nil
}

func open(path string, busy time.Duration, level logger.LogLevel) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busy.Milliseconds())
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection. Calling it again is a no-op.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		defer release(s.path)

		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = fmt.Errorf("failed to get database instance: %w", err)
			return
		}
		s.closeErr = sqlDB.Close()
	})
	return s.closeErr
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Path returns the backing database file
func (s *SQLiteStore) Path() string {
	return s.path
}

// Record operations

func (s *SQLiteStore) CreateRecord(ctx context.Context, record *models.Record) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id uint) (*models.Record, error) {
	var record models.Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]models.Record, error) {
	var records []models.Record
	query := s.db.WithContext(ctx).Order("id DESC")

	if filter.Category != "" {
		query = query.Where("kategori = ?", filter.Category)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("(judul_surat LIKE ? OR nomor_surat LIKE ? OR asal_surat LIKE ?)", like, like, like)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Find(&records).Error
	return records, err
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, record *models.Record) error {
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Record{}, id).Error
}

func (s *SQLiteStore) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	var rows []categoryCount

	err := s.db.WithContext(ctx).
		Model(&models.Record{}).
		Select("kategori, COUNT(*) AS total").
		Group("kategori").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Category]int64, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	for _, row := range rows {
		if c, ok := models.ParseCategory(row.Category); ok {
			counts[c] += row.Total
		}
	}
	return counts, nil
}

type categoryCount struct {
	Category string `gorm:"column:kategori"`
	Total    int64  `gorm:"column:total"`
}

// Attachment operations

func (s *SQLiteStore) SelectAttachments(ctx context.Context) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).
		Model(&models.Record{}).
		Select("id, file_path").
		Where("file_path IS NOT NULL AND file_path != ''").
		Order("id").
		Scan(&attachments).Error
	return attachments, err
}

func (s *SQLiteStore) UpdateAttachmentPaths(ctx context.Context, updates []models.PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Exec("UPDATE surat SET file_path = ? WHERE id = ?", u.Path, u.ID).Error; err != nil {
				return fmt.Errorf("failed to update path of record %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

// Reference code operations

func (s *SQLiteStore) CreateCode(ctx context.Context, code *models.ReferenceCode) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ReferenceCode{}).
		Where("kode = ?", code.Code).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, code.Code)
	}

	return s.db.WithContext(ctx).Create(code).Error
}

func (s *SQLiteStore) UpdateCode(ctx context.Context, code *models.ReferenceCode) error {
	return s.db.WithContext(ctx).Save(code).Error
}

func (s *SQLiteStore) ListCodes(ctx context.Context) ([]models.ReferenceCode, error) {
	var codes []models.ReferenceCode
	err := s.db.WithContext(ctx).Order("kode ASC").Find(&codes).Error
	return codes, err
}

func (s *SQLiteStore) DeleteCode(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.ReferenceCode{}, id).Error
}

// CheckUnlocked reports ErrLocked while a store of this process holds path
// open, or when another connection holds a lock on the file. A missing file
// is not locked.
func CheckUnlocked(ctx context.Context, path string) error {
	if InUse(path) {
		return fmt.Errorf("%w: %s is open in this process", ErrLocked, path)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return classify(err)
	}

	db, err := open(path, 0, logger.Silent)
	if err != nil {
		return classify(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return classify(err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
		return classify(err)
	}
	if _, err := conn.ExecContext(ctx, "ROLLBACK"); err != nil {
		return fmt.Errorf("failed to release probe lock: %w", err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}
	return err
}
