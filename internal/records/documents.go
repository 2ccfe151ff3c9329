package records

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/fsutil"
)

// AddDocumentGroup copies files into a new folder below the document root
// named after title and stores a dokumen record pointing at it.
func (s *Service) AddDocumentGroup(ctx context.Context, title string, files []string) (*models.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: files", ErrMissingField)
	}

	name := SafeFolderName(title)
	if name == "" {
		return nil, fmt.Errorf("%w: title %q has no usable characters", ErrMissingField, title)
	}

	target := filepath.Join(s.folders.DocumentRoot(), name)
	exists, err := s.exists(target)
	if err != nil {
		return nil, err
	}
	if exists {
		target += "_" + s.now().Format("150405")
	}

	if err := s.fs.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", target, err)
	}
	for _, file := range files {
		if err := fsutil.CopyFile(s.fs, file, filepath.Join(target, filepath.Base(file)), 0644); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", file, err)
		}
	}

	record := &models.Record{
		Subject:  title,
		Category: models.CategoryDocument,
		Date:     s.today(),
		FilePath: &target,
	}
	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store record: %w", err)
	}

	s.log.Info("Stored %d files for '%s' in %s", len(files), title, target)
	return record, nil
}

func (s *Service) exists(path string) (bool, error) {
	_, err := s.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if fsutil.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
