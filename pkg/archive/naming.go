package archive

import (
	"fmt"
	"strconv"
	"strings"
)

// FilesNamespace is the top-level archive directory holding attachments.
const FilesNamespace = "files"

// dirMarker separates the record id from the original directory name. Plain
// file names containing it are not expected.
const dirMarker = "_DIR_"

type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDir
)

func (k EntryKind) String() string {
	if k == EntryDir {
		return "directory"
	}
	return "file"
}

// Entry is a decoded top-level name below files/.
type Entry struct {
	ID   uint
	Name string
	Kind EntryKind
}

// EncodeFileEntry names the archive entry of a single-file attachment:
// files/{id}_{name}.
func EncodeFileEntry(id uint, name string) string {
	return fmt.Sprintf("%s/%d_%s", FilesNamespace, id, name)
}

// EncodeDirEntry names the root of a directory attachment:
// files/{id}_DIR_{name}. Contents go below it with "/" separators.
func EncodeDirEntry(id uint, name string) string {
	return fmt.Sprintf("%s/%d%s%s", FilesNamespace, id, dirMarker, name)
}

// DecodeEntry reverses EncodeFileEntry or EncodeDirEntry for the base name of
// an extracted entry. isDir selects which scheme applies. Names without a
// numeric id prefix, or with nothing after it, are rejected.
func DecodeEntry(name string, isDir bool) (Entry, bool) {
	sep, kind := "_", EntryFile
	if isDir {
		sep, kind = dirMarker, EntryDir
	}

	prefix, rest, found := strings.Cut(name, sep)
	if !found || !isDigits(prefix) {
		return Entry{}, false
	}
	if rest == "" || rest == "." || rest == ".." || strings.ContainsAny(rest, `/\`) {
		return Entry{}, false
	}

	id, err := strconv.ParseUint(prefix, 10, 0)
	if err != nil {
		return Entry{}, false
	}

	return Entry{ID: uint(id), Name: rest, Kind: kind}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
