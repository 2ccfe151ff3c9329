package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/mwantia/arsip/pkg/fsutil"
)

// Create writes a backup of the store and every attachment it references to
// destination. Attachments missing on disk are skipped. On failure the
// partially written destination is left in place.
func (e *Engine) Create(ctx context.Context, destination string) (*CreateResult, error) {
	start := time.Now()

	exists, err := e.exists(e.storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, e.storePath)
	}

	st, err := e.open(ctx, e.storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	attachments, err := st.SelectAttachments(ctx)
	st.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read attachments: %w", err)
	}

	if dir := filepath.Dir(destination); dir != "" {
		if err := e.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	out, err := e.fs.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", destination, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	result := &CreateResult{
		FilePath: destination,
	}

	if err := e.addFile(zw, e.storePath, filepath.Base(e.storePath)); err != nil {
		return nil, fmt.Errorf("failed to archive database: %w", err)
	}

	for _, a := range attachments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := e.fs.Stat(a.Path)
		if err != nil {
			if fsutil.IsNotExist(err) {
				e.log.Debug("Skipping missing attachment of record %d: %s", a.ID, a.Path)
				result.SkippedCount++
				continue
			}
			return nil, fmt.Errorf("failed to stat attachment of record %d: %w", a.ID, err)
		}

		name := filepath.Base(filepath.Clean(a.Path))
		switch {
		case info.IsDir():
			err = e.addDir(zw, a.Path, EncodeDirEntry(a.ID, name))
		case info.Mode().IsRegular():
			err = e.addFile(zw, a.Path, EncodeFileEntry(a.ID, name))
		default:
			e.log.Debug("Skipping attachment of record %d with mode %s", a.ID, info.Mode())
			result.SkippedCount++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to archive attachment of record %d: %w", a.ID, err)
		}
		result.ItemCount++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}

	if info, err := e.fs.Stat(destination); err == nil {
		result.SizeBytes = info.Size()
	}
	result.Duration = time.Since(start)

	e.log.Info("Backup written to %s (%d items, %d skipped)", destination, result.ItemCount, result.SkippedCount)
	return result, nil
}

func (e *Engine) exists(path string) (bool, error) {
	_, err := e.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if fsutil.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (e *Engine) addFile(zw *zip.Writer, path, entry string) error {
	f, err := e.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// addDir stores root itself as a directory entry so empty groups survive,
// then every file below it with "/" separated relative names.
func (e *Engine) addDir(zw *zip.Writer, root, entry string) error {
	return e.walk(root, func(path string, info os.FileInfo) error {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if rel != "." {
				return nil
			}
			header := &zip.FileHeader{
				Name:     entry + "/",
				Method:   zip.Store,
				Modified: info.ModTime(),
			}
			header.SetMode(os.ModeDir | 0755)
			_, err := zw.CreateHeader(header)
			return err
		}

		return e.addFile(zw, path, entry+"/"+filepath.ToSlash(rel))
	})
}

// walk visits root and everything below it, resolving symlinks to plain
// files. Symlinked directories are not followed.
func (e *Engine) walk(root string, fn func(path string, info os.FileInfo) error) error {
	return afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := e.fs.Stat(path)
			if err != nil || target.IsDir() {
				e.log.Debug("Skipping symlink %s", path)
				return nil
			}
			info = target
		}
		return fn(path, info)
	})
}
