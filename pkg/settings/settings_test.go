package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/arsip/pkg/db/models"
)

func TestSettings_Defaults(t *testing.T) {
	base := t.TempDir()
	s := New(filepath.Join(base, "config.json"), base)

	assert.False(t, s.Exists())
	assert.Equal(t, filepath.Join(base, "uploads"), s.UploadRoot())
	assert.Equal(t, filepath.Join(base, "uploads", "surat_masuk"), s.FolderPath(models.CategoryIncoming))
	assert.Equal(t, filepath.Join(base, "uploads", "surat_keluar"), s.FolderPath(models.CategoryOutgoing))
	assert.Equal(t, filepath.Join(base, "uploads", "dokumen"), s.DocumentRoot())
}

func TestSettings_SetFolderPathPersists(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "config.json")
	s := New(file, base)

	require.NoError(t, s.SetFolderPath(models.CategoryIncoming, "/srv/masuk"))
	require.NoError(t, s.SetFolderPath(models.CategoryDocument, "/srv/dokumen"))
	assert.True(t, s.Exists())

	reloaded := New(file, base)
	assert.Equal(t, "/srv/masuk", reloaded.FolderPath(models.CategoryIncoming))
	assert.Equal(t, filepath.Join(base, "uploads", "surat_keluar"), reloaded.FolderPath(models.CategoryOutgoing))

	roots := reloaded.Roots()
	assert.Equal(t, filepath.Join(base, "uploads"), roots.UploadRoot)
	assert.Equal(t, "/srv/dokumen", roots.DocumentRoot)
}

func TestSettings_KeepsUnknownKeys(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"path_keluar": "/old/keluar", "theme": "dark"}`), 0644))

	s := New(file, base)
	assert.Equal(t, "/old/keluar", s.FolderPath(models.CategoryOutgoing))
	require.NoError(t, s.SetFolderPath(models.CategoryOutgoing, "/new/keluar"))

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, "/new/keluar", stored["path_keluar"])
	assert.Equal(t, "dark", stored["theme"])
}

func TestSettings_UnreadableFileFallsBack(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "config.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0644))

	s := New(file, base)
	assert.Equal(t, filepath.Join(base, "uploads", "surat_masuk"), s.FolderPath(models.CategoryIncoming))
}
