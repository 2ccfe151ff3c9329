package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/arsip/internal/config"
	"github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/archive"
	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/db/store"
	"github.com/mwantia/arsip/pkg/log"
)

func testConfig(t *testing.T) *config.BaseConfig {
	t.Helper()

	cfg := config.GetDefault()
	cfg.DataDir = t.TempDir()
	cfg.Log.Level = "ERROR"
	cfg.Log.NoColor = true
	return &cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	a, err := New(testConfig(t))
	require.NoError(t, err)
	return a
}

func TestApp_RecordsOpensStoreLazily(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	path := a.Config().StorePath()

	assert.NoFileExists(t, path)

	svc, err := a.Records(ctx)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.True(t, store.InUse(path))

	again, err := a.Records(ctx)
	require.NoError(t, err)
	assert.Same(t, svc, again)

	_, err = svc.AddCode(ctx, "005", "Undangan")
	require.NoError(t, err)

	require.NoError(t, a.Close(ctx))
	assert.False(t, store.InUse(path), "cleanup closes the store")

	reopened, err := a.Records(ctx)
	require.NoError(t, err)
	assert.NotSame(t, svc, reopened)

	codes, err := reopened.ListCodes(ctx)
	require.NoError(t, err)
	assert.Len(t, codes, 1)
	require.NoError(t, a.Close(ctx))
}

func TestApp_LoggerInjection(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	defer a.Close(ctx)

	var buf bytes.Buffer
	a.log = log.NewLoggerServiceWithWriter("arsip", config.LogConfig{Level: "DEBUG", JSON: true}, &buf)
	sc, err := a.setupServices()
	require.NoError(t, err)
	a.sc = sc

	rs, err := container.Resolve[*recordService](ctx, a.sc)
	require.NoError(t, err)
	require.NotNil(t, rs.Log)
	assert.Same(t, a.settings, rs.Settings)
	assert.Same(t, a.cfg, rs.Config)

	archiver, err := a.Backup(ctx)
	require.NoError(t, err)
	backup, ok := archiver.(*backupService)
	require.True(t, ok)
	require.NotNil(t, backup.engine)

	buf.Reset()
	rs.Log.Info("records")
	backup.Log.Info("archive")

	out := buf.String()
	assert.Contains(t, out, `"service":"arsip/records"`)
	assert.Contains(t, out, `"service":"arsip/archive"`)
}

func TestProbeStore(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	defer a.Close(ctx)
	path := a.Config().StorePath()

	assert.NoError(t, probeStore(ctx, path), "missing file")

	_, err := a.Records(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, probeStore(ctx, path), archive.ErrStoreLocked, "idle store of this process")

	require.NoError(t, a.Close(ctx))
	assert.NoError(t, probeStore(ctx, path))
}

func TestApp_RestoreRefusedWhileRecordsOpen(t *testing.T) {
	ctx := context.Background()

	src := newTestApp(t)
	_, err := src.Records(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Close(ctx))

	srcBackup, err := src.Backup(ctx)
	require.NoError(t, err)
	backup := filepath.Join(t.TempDir(), "BACKUP_ARSIP.zip")
	_, err = srcBackup.Create(ctx, backup)
	require.NoError(t, err)

	dst := newTestApp(t)
	defer dst.Close(ctx)

	svc, err := dst.Records(ctx)
	require.NoError(t, err)
	_, err = svc.AddCode(ctx, "005", "Undangan")
	require.NoError(t, err)

	archiver, err := dst.Backup(ctx)
	require.NoError(t, err)
	_, err = archiver.Restore(ctx, backup, archive.RestoreOptions{
		Confirmed: true,
		Roots:     dst.Settings().Roots(),
	})
	assert.ErrorIs(t, err, archive.ErrStoreLocked)

	codes, err := svc.ListCodes(ctx)
	require.NoError(t, err, "live store left untouched")
	assert.Len(t, codes, 1)
}

func TestApp_BackupRestoreAcrossInstallations(t *testing.T) {
	ctx := context.Background()

	src := newTestApp(t)
	scan := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(scan, []byte("scan"), 0644))

	svc, err := src.Records(ctx)
	require.NoError(t, err)
	letter, err := svc.AddLetter(ctx, records.Letter{
		Category:   models.CategoryIncoming,
		Number:     "001/UND/2024",
		Subject:    "Undangan - 005",
		SourceFile: scan,
	})
	require.NoError(t, err)
	require.NoError(t, src.Close(ctx))

	backup := filepath.Join(t.TempDir(), "BACKUP_ARSIP.zip")
	srcBackup, err := src.Backup(ctx)
	require.NoError(t, err)
	created, err := srcBackup.Create(ctx, backup)
	require.NoError(t, err)
	assert.Equal(t, 1, created.ItemCount)

	dst := newTestApp(t)
	dstBackup, err := dst.Backup(ctx)
	require.NoError(t, err)
	result, err := dstBackup.Restore(ctx, backup, archive.RestoreOptions{
		Confirmed: true,
		Roots:     dst.Settings().Roots(),
	})
	require.NoError(t, err)
	assert.True(t, result.RestartRequired)

	restored, err := dst.Records(ctx)
	require.NoError(t, err)
	defer dst.Close(ctx)

	list, err := restored.List(ctx, store.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	want := filepath.Join(dst.Settings().UploadRoot(), filepath.Base(letter.Attachment()))
	assert.Equal(t, filepath.ToSlash(want), list[0].Attachment())
	assert.Equal(t, "Undangan", list[0].Subject)
	assert.FileExists(t, want)
}
