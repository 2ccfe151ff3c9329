package records

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/fsutil"
)

// Letter is the input of AddLetter.
type Letter struct {
	Category     models.Category
	Number       string
	Subject      string // may carry a trailing " - CODE"
	Counterparty string
	Date         string // received or sent, defaults to today
	LetterDate   string // defaults to today
	Note         string
	SourceFile   string
}

// LetterPatch changes the fields that are set.
type LetterPatch struct {
	Number       *string
	Subject      *string
	Counterparty *string
	Date         *string
	LetterDate   *string
	Note         *string
	SourceFile   *string
}

// SplitSubject drops the reference code picked together with a subject,
// "Undangan Rapat - 005" becomes "Undangan Rapat".
func SplitSubject(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, " - "); i >= 0 {
		return raw[:i]
	}
	return raw
}

func filePrefix(category models.Category) string {
	if category == models.CategoryOutgoing {
		return "OUT_"
	}
	return "IN_"
}

// AddLetter copies the scan into the category folder and stores the record.
func (s *Service) AddLetter(ctx context.Context, in Letter) (*models.Record, error) {
	if !in.Category.IsLetter() {
		return nil, fmt.Errorf("%w: %q is not a letter category", ErrInvalidCategory, in.Category)
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, fmt.Errorf("%w: number", ErrMissingField)
	}
	if strings.TrimSpace(in.SourceFile) == "" {
		return nil, fmt.Errorf("%w: source file", ErrMissingField)
	}

	dest, err := s.importFile(in.Category, in.SourceFile, filePrefix(in.Category))
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		Number:       number,
		Subject:      SplitSubject(in.Subject),
		Counterparty: strings.TrimSpace(in.Counterparty),
		Category:     in.Category,
		Date:         orDefault(in.Date, s.today()),
		LetterDate:   orDefault(in.LetterDate, s.today()),
		Note:         strings.TrimSpace(in.Note),
		FilePath:     &dest,
	}

	if err := s.store.CreateRecord(ctx, record); err != nil {
		if rmErr := s.fs.Remove(dest); rmErr != nil {
			s.log.Warn("Unable to remove %s after failed insert: %v", dest, rmErr)
		}
		return nil, fmt.Errorf("failed to store record: %w", err)
	}

	s.log.Info("Archived %s letter %d as %s", in.Category, record.ID, filepath.Base(dest))
	return record, nil
}

// EditLetter updates a letter. A source file different from the stored one
// is copied in as a new attachment; the previous file stays on disk.
func (s *Service) EditLetter(ctx context.Context, id uint, patch LetterPatch) (*models.Record, error) {
	record, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %d: %w", id, err)
	}
	if !record.Category.IsLetter() {
		return nil, fmt.Errorf("%w: record %d is a %s", ErrInvalidCategory, id, record.Category)
	}

	if patch.Number != nil {
		record.Number = strings.TrimSpace(*patch.Number)
	}
	if patch.Subject != nil {
		record.Subject = SplitSubject(*patch.Subject)
	}
	if patch.Counterparty != nil {
		record.Counterparty = strings.TrimSpace(*patch.Counterparty)
	}
	if patch.Date != nil {
		record.Date = *patch.Date
	}
	if patch.LetterDate != nil {
		record.LetterDate = *patch.LetterDate
	}
	if patch.Note != nil {
		record.Note = strings.TrimSpace(*patch.Note)
	}

	if patch.SourceFile != nil && *patch.SourceFile != "" && *patch.SourceFile != record.Attachment() {
		dest, err := s.importFile(record.Category, *patch.SourceFile, filePrefix(record.Category)+"EDIT_")
		if err != nil {
			return nil, err
		}
		record.FilePath = &dest
	}

	if err := s.store.UpdateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update record %d: %w", id, err)
	}
	return record, nil
}

func (s *Service) importFile(category models.Category, src, prefix string) (string, error) {
	dir := s.folders.FolderPath(category)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", dir, err)
	}

	dest, err := uniquePath(s.fs, dir, prefix+s.now().Format("20060102_150405"), filepath.Ext(src))
	if err != nil {
		return "", err
	}
	if err := fsutil.CopyFile(s.fs, src, dest, 0644); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return dest, nil
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
