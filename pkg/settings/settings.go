// Package settings persists the per-category folder paths in a small JSON
// file (keys "path_<category>") and derives the managed upload tree from them.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/mwantia/arsip/pkg/archive"
	"github.com/mwantia/arsip/pkg/db/models"
)

const (
	uploadDirName   = "uploads"
	documentDirName = "dokumen"
)

type Settings struct {
	mutex   sync.Mutex
	file    string
	baseDir string
}

// New binds the settings to file; baseDir anchors the default upload tree.
func New(file, baseDir string) *Settings {
	return &Settings{
		file:    file,
		baseDir: baseDir,
	}
}

// load reads the file into a fresh viper instance. A missing or unreadable
// file yields an empty instance so callers fall back to defaults.
func (s *Settings) load() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.file)
	v.SetConfigType("json")

	if _, err := os.Stat(s.file); err != nil {
		return v
	}
	if err := v.ReadInConfig(); err != nil {
		return viper.New()
	}
	return v
}

func key(category models.Category) string {
	return "path_" + string(category)
}

// UploadRoot is the directory restored single files are relocated into.
func (s *Settings) UploadRoot() string {
	return filepath.Join(s.baseDir, uploadDirName)
}

// DocumentRoot holds document-group folders, "dokumen" under the upload root
// unless configured otherwise.
func (s *Settings) DocumentRoot() string {
	return s.FolderPath(models.CategoryDocument)
}

// FolderPath returns the configured folder of a category.
func (s *Settings) FolderPath(category models.Category) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if p := s.load().GetString(key(category)); p != "" {
		return p
	}
	return s.defaultFolder(category)
}

func (s *Settings) defaultFolder(category models.Category) string {
	if category == models.CategoryDocument {
		return filepath.Join(s.UploadRoot(), documentDirName)
	}
	return filepath.Join(s.UploadRoot(), "surat_"+string(category))
}

// SetFolderPath stores path for category, keeping every other key in the file.
func (s *Settings) SetFolderPath(category models.Category, path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	v := s.load()
	v.Set(key(category), path)

	if dir := filepath.Dir(s.file); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(s.file); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.file, err)
	}
	return nil
}

// Roots snapshots the current upload tree for a restore.
func (s *Settings) Roots() archive.Roots {
	return archive.Roots{
		UploadRoot:   s.UploadRoot(),
		DocumentRoot: s.DocumentRoot(),
	}
}

// Exists reports whether the settings file has been written yet.
func (s *Settings) Exists() bool {
	_, err := os.Stat(s.file)
	return !errors.Is(err, fs.ErrNotExist)
}
