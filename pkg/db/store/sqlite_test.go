package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/arsip/pkg/db/migrations"
	"github.com/mwantia/arsip/pkg/db/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "arsip_digital.db")
	s, err := NewSQLiteStore(SQLiteConfig{Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string {
	return &s
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))

	statuses, err := migrations.NewMigrator(s.DB()).Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, st := range statuses {
		assert.True(t, st.Applied, st.Description)
	}
	assert.True(t, s.DB().Migrator().HasTable("surat"))
	assert.True(t, s.DB().Migrator().HasTable("kode_surat"))
}

func TestSQLiteStore_RecordCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	record := &models.Record{
		Number:   "001/UND/2024",
		Subject:  "Undangan Rapat",
		Category: models.CategoryIncoming,
		Date:     "2024-03-01",
		FilePath: strPtr("/data/in/IN_1.pdf"),
	}
	require.NoError(t, s.CreateRecord(ctx, record))
	require.NotZero(t, record.ID)

	got, err := s.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Undangan Rapat", got.Subject)
	assert.Equal(t, "/data/in/IN_1.pdf", got.Attachment())

	got.Note = "segera"
	require.NoError(t, s.UpdateRecord(ctx, got))

	again, err := s.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "segera", again.Note)

	require.NoError(t, s.DeleteRecord(ctx, record.ID))
	_, err = s.GetRecord(ctx, record.ID)
	assert.Error(t, err)
}

func TestSQLiteStore_ListRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, r := range []models.Record{
		{Subject: "Undangan", Category: models.CategoryIncoming},
		{Subject: "Laporan", Number: "UND-2", Category: models.CategoryOutgoing},
		{Subject: "Nota Dinas", Category: models.CategoryIncoming},
	} {
		r := r
		require.NoError(t, s.CreateRecord(ctx, &r))
	}

	incoming, err := s.ListRecords(ctx, RecordFilter{Category: models.CategoryIncoming})
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, "Nota Dinas", incoming[0].Subject, "newest first")

	matched, err := s.ListRecords(ctx, RecordFilter{Keyword: "und"})
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	scoped, err := s.ListRecords(ctx, RecordFilter{Category: models.CategoryIncoming, Keyword: "UND"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Undangan", scoped[0].Subject)
}

func TestSQLiteStore_CountByCategory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRecord(ctx, &models.Record{Category: models.CategoryIncoming}))
	require.NoError(t, s.CreateRecord(ctx, &models.Record{Category: models.CategoryIncoming}))
	require.NoError(t, s.CreateRecord(ctx, &models.Record{Category: models.CategoryDocument}))

	counts, err := s.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.CategoryIncoming])
	assert.Equal(t, int64(0), counts[models.CategoryOutgoing])
	assert.Equal(t, int64(1), counts[models.CategoryDocument])
}

func TestSQLiteStore_SelectAttachments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	withFile := &models.Record{Category: models.CategoryOutgoing, FilePath: strPtr("/data/out/007.pdf")}
	empty := &models.Record{Category: models.CategoryOutgoing, FilePath: strPtr("")}
	null := &models.Record{Category: models.CategoryIncoming}
	dir := &models.Record{Category: models.CategoryDocument, FilePath: strPtr("/data/dokumen/Rapat")}
	for _, r := range []*models.Record{withFile, empty, null, dir} {
		require.NoError(t, s.CreateRecord(ctx, r))
	}

	attachments, err := s.SelectAttachments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Attachment{
		{ID: withFile.ID, Path: "/data/out/007.pdf"},
		{ID: dir.ID, Path: "/data/dokumen/Rapat"},
	}, attachments)
}

func TestSQLiteStore_UpdateAttachmentPaths(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := &models.Record{Category: models.CategoryOutgoing, FilePath: strPtr("/old/a.pdf")}
	b := &models.Record{Category: models.CategoryDocument, FilePath: strPtr("/old/b")}
	require.NoError(t, s.CreateRecord(ctx, a))
	require.NoError(t, s.CreateRecord(ctx, b))

	require.NoError(t, s.UpdateAttachmentPaths(ctx, []models.PathUpdate{
		{Path: "/new/uploads/a.pdf", ID: a.ID},
		{Path: "/new/uploads/dokumen/b", ID: b.ID},
	}))
	require.NoError(t, s.UpdateAttachmentPaths(ctx, nil))

	got, err := s.GetRecord(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "/new/uploads/a.pdf", got.Attachment())

	got, err = s.GetRecord(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "/new/uploads/dokumen/b", got.Attachment())
}

func TestSQLiteStore_Codes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	und := &models.ReferenceCode{Code: "005", Description: "Undangan"}
	require.NoError(t, s.CreateCode(ctx, und))
	require.NoError(t, s.CreateCode(ctx, &models.ReferenceCode{Code: "001", Description: "Lambang"}))

	err := s.CreateCode(ctx, &models.ReferenceCode{Code: "005", Description: "Lainnya"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	err = s.CreateCode(ctx, &models.ReferenceCode{Code: "009", Description: "Undangan"})
	assert.Error(t, err, "description is unique")

	und.Description = "Undangan Rapat"
	require.NoError(t, s.UpdateCode(ctx, und))

	codes, err := s.ListCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "001", codes[0].Code)
	assert.Equal(t, "Undangan Rapat", codes[1].Description)

	require.NoError(t, s.DeleteCode(ctx, und.ID))
	codes, err = s.ListCodes(ctx)
	require.NoError(t, err)
	assert.Len(t, codes, 1)
}

func TestCheckUnlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, CheckUnlocked(ctx, filepath.Join(t.TempDir(), "none.db")))
	})

	t.Run("idle store in this process", func(t *testing.T) {
		s := setupTestStore(t)

		err := CheckUnlocked(ctx, s.Path())
		assert.ErrorIs(t, err, ErrLocked)
		assert.True(t, InUse(s.Path()))
	})

	t.Run("closed store", func(t *testing.T) {
		s := setupTestStore(t)
		require.NoError(t, s.Close())

		assert.False(t, InUse(s.Path()))
		assert.NoError(t, CheckUnlocked(ctx, s.Path()))
	})

	t.Run("second handle keeps the file in use", func(t *testing.T) {
		s := setupTestStore(t)
		other, err := OpenSQLiteStore(ctx, s.Path())
		require.NoError(t, err)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.ErrorIs(t, CheckUnlocked(ctx, s.Path()), ErrLocked)

		require.NoError(t, other.Close())
		assert.NoError(t, CheckUnlocked(ctx, s.Path()))
	})

	t.Run("open write transaction", func(t *testing.T) {
		s := setupTestStore(t)

		tx := s.DB().Begin()
		require.NoError(t, tx.Error)
		require.NoError(t, tx.Exec("INSERT INTO surat (kategori) VALUES ('masuk')").Error)
		defer tx.Rollback()

		err := CheckUnlocked(ctx, s.Path())
		assert.ErrorIs(t, err, ErrLocked)
	})
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, ParseLogLevel("silent"), ParseLogLevel(""))
	assert.NotEqual(t, ParseLogLevel("silent"), ParseLogLevel("info"))
}

func TestMigrator_RollbackAndReapply(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	migrator := migrations.NewMigrator(s.DB())

	require.NoError(t, migrator.Rollback(ctx))

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	require.NoError(t, migrator.Migrate(ctx))
	statuses, err = migrator.Status(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[1].Applied)
}
