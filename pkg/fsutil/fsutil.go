// Package fsutil holds the file operations shared by the archive engine and
// the record service. Everything goes through an afero.Fs.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// Move renames src to dst, falling back to copy and remove when the two
// live on different devices.
func Move(fs afero.Fs, src, dst string) error {
	err := fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	info, err := fs.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		err = CopyTree(fs, src, dst)
	} else {
		err = CopyFile(fs, src, dst, info.Mode().Perm())
	}
	if err != nil {
		return fmt.Errorf("failed to copy %s across devices: %w", src, err)
	}
	return fs.RemoveAll(src)
}

// CopyFile copies the regular file src to dst, truncating dst.
func CopyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyTree copies the directory src and everything below it to dst.
func CopyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, 0755)
		}
		return CopyFile(fs, path, target, info.Mode().Perm())
	})
}

func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
