package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/fsutil"
)

// Restore replaces the live store with the snapshot inside source and moves
// every attachment into roots, rewriting the stored paths to match. It is
// destructive and requires opts.Confirmed. The scratch directory is removed
// on every outcome.
//
// A failure after attachments were moved leaves them at their new location
// while the store still points to the archived paths.
func (e *Engine) Restore(ctx context.Context, source string, opts RestoreOptions) (*RestoreResult, error) {
	if !opts.Confirmed {
		return nil, ErrRestoreNotConfirmed
	}

	roots, err := opts.Roots.normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	if err := e.fs.RemoveAll(e.scratchDir); err != nil {
		return nil, fmt.Errorf("failed to clear scratch directory: %w", err)
	}
	if err := e.fs.MkdirAll(e.scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := e.fs.RemoveAll(e.scratchDir); err != nil {
			e.log.Warn("Unable to remove scratch directory %s: %v", e.scratchDir, err)
		}
	}()

	if err := e.extract(ctx, source); err != nil {
		return nil, err
	}

	snapshot, err := e.findSnapshot()
	if err != nil {
		return nil, err
	}
	if err := e.replaceStore(ctx, snapshot); err != nil {
		return nil, err
	}
	e.log.Info("Database replaced from %s", filepath.Base(snapshot))

	if err := e.fs.MkdirAll(roots.UploadRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}

	st, err := e.open(ctx, e.storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open restored database: %w", err)
	}
	defer st.Close()

	result := &RestoreResult{
		RestartRequired: true,
	}

	filesDir, err := e.findFilesDir()
	if err != nil {
		return nil, err
	}
	if filesDir != "" {
		updates, ignored, err := e.relocate(ctx, filesDir, roots)
		if err != nil {
			return nil, err
		}
		result.Relocated = updates
		result.IgnoredCount = ignored
	}

	if err := st.UpdateAttachmentPaths(ctx, result.Relocated); err != nil {
		return nil, fmt.Errorf("failed to update attachment paths: %w", err)
	}

	result.Duration = time.Since(start)
	e.log.Info("Restore finished: %d attachments relocated, %d entries ignored", len(result.Relocated), result.IgnoredCount)
	return result, nil
}

// extract unpacks source into the scratch directory. Entries escaping it are
// rejected.
func (e *Engine) extract(ctx context.Context, source string) error {
	f, err := e.fs.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveMalformed, err)
	}

	base := filepath.Clean(e.scratchDir) + string(os.PathSeparator)
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := strings.ReplaceAll(zf.Name, `\`, "/")
		target := filepath.Join(e.scratchDir, filepath.FromSlash(name))
		if path.IsAbs(name) || filepath.VolumeName(name) != "" || !strings.HasPrefix(target+string(os.PathSeparator), base) {
			return fmt.Errorf("%w: entry %q escapes the archive", ErrArchiveMalformed, zf.Name)
		}

		if strings.HasSuffix(name, "/") || zf.FileInfo().IsDir() {
			if err := e.fs.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to extract %s: %w", zf.Name, err)
			}
			continue
		}

		if err := e.extractFile(zf, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", zf.Name, err)
		}
	}
	return nil
}

func (e *Engine) extractFile(zf *zip.File, target string) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if modified := zf.Modified; !modified.IsZero() {
		if err := e.fs.Chtimes(target, modified, modified); err != nil {
			e.log.Debug("Unable to keep modification time of %s: %v", target, err)
		}
	}
	return nil
}

// findSnapshot prefers an entry named like the live store and falls back to
// the first file with the same extension. Anything below a files/ directory
// is an attachment and never considered.
func (e *Engine) findSnapshot() (string, error) {
	want := filepath.Base(e.storePath)
	ext := filepath.Ext(want)

	var exact, fallback string
	err := afero.Walk(e.fs, e.scratchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == FilesNamespace && path != e.scratchDir {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case info.Name() == want:
			if exact == "" {
				exact = path
			}
		case ext != "" && strings.EqualFold(filepath.Ext(info.Name()), ext):
			if fallback == "" {
				fallback = path
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan extracted archive: %w", err)
	}

	if exact != "" {
		return exact, nil
	}
	if fallback != "" {
		e.log.Warn("No %s in archive, using %s", want, filepath.Base(fallback))
		return fallback, nil
	}
	return "", ErrArchiveMalformed
}

// findFilesDir returns the attachment namespace of the extracted archive or
// "" when the archive carries no attachments.
func (e *Engine) findFilesDir() (string, error) {
	top := filepath.Join(e.scratchDir, FilesNamespace)
	if info, err := e.fs.Stat(top); err == nil && info.IsDir() {
		return top, nil
	}

	var found string
	err := afero.Walk(e.fs, e.scratchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if found != "" {
			return filepath.SkipDir
		}
		if info.Name() == FilesNamespace && path != e.scratchDir {
			found = path
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan extracted archive: %w", err)
	}
	return found, nil
}

// replaceStore swaps the live store for snapshot. The copy is staged next to
// the live file so the final rename stays on one filesystem.
func (e *Engine) replaceStore(ctx context.Context, snapshot string) error {
	if e.probe != nil {
		if err := e.probe(ctx, e.storePath); err != nil {
			if errors.Is(err, ErrStoreLocked) {
				return err
			}
			e.log.Warn("Lock check on %s failed: %v", e.storePath, err)
		}
	}

	if err := e.fs.MkdirAll(filepath.Dir(e.storePath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	staging := fmt.Sprintf("%s.restore-%s", e.storePath, uuid.NewString())
	if err := fsutil.CopyFile(e.fs, snapshot, staging, 0644); err != nil {
		e.fs.Remove(staging)
		return fmt.Errorf("failed to stage database snapshot: %w", err)
	}

	// Leftover journals would be replayed onto the new file.
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if err := e.fs.Remove(e.storePath + suffix); err != nil && !fsutil.IsNotExist(err) {
			e.fs.Remove(staging)
			return lockedOr(err, "failed to remove stale journal")
		}
	}

	if err := e.fs.Rename(staging, e.storePath); err != nil {
		e.fs.Remove(staging)
		return lockedOr(err, "failed to replace database")
	}
	return nil
}

func lockedOr(err error, msg string) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrStoreLocked, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// relocate moves every decodable entry of filesDir into roots. Entries keep
// their original name unless an earlier entry of this restore already took
// it, in which case the archived name is kept.
func (e *Engine) relocate(ctx context.Context, filesDir string, roots Roots) ([]models.PathUpdate, int, error) {
	entries, err := afero.ReadDir(e.fs, filesDir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read attachments: %w", err)
	}

	var updates []models.PathUpdate
	ignored := 0
	claimed := make(map[string]bool)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		decoded, ok := DecodeEntry(entry.Name(), entry.IsDir())
		if !ok {
			e.log.Debug("Ignoring unrecognized archive entry %s", entry.Name())
			ignored++
			continue
		}

		src := filepath.Join(filesDir, entry.Name())
		var target string

		switch decoded.Kind {
		case EntryDir:
			target = unclaimed(claimed, roots.DocumentRoot, decoded.Name, entry.Name(), decoded.ID)
			if err := e.fs.RemoveAll(target); err != nil {
				return nil, 0, fmt.Errorf("failed to clear %s: %w", target, err)
			}
			if err := e.fs.MkdirAll(roots.DocumentRoot, 0755); err != nil {
				return nil, 0, fmt.Errorf("failed to create document root: %w", err)
			}

		default:
			target = unclaimed(claimed, roots.UploadRoot, decoded.Name, entry.Name(), decoded.ID)
		}
		claimed[target] = true

		if err := fsutil.Move(e.fs, src, target); err != nil {
			return nil, 0, fmt.Errorf("failed to move %s of record %d: %w", decoded.Kind, decoded.ID, err)
		}

		updates = append(updates, models.PathUpdate{
			Path: filepath.ToSlash(target),
			ID:   decoded.ID,
		})
	}

	return updates, ignored, nil
}

// unclaimed returns the first of root/name, root/archived, root/{id}_archived,
// root/{id}_{id}_archived and so on that no earlier entry of this restore
// has taken.
func unclaimed(claimed map[string]bool, root, name, archived string, id uint) string {
	target := filepath.Join(root, name)
	for next := archived; claimed[target]; next = fmt.Sprintf("%d_%s", id, next) {
		target = filepath.Join(root, next)
	}
	return target
}
