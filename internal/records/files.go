package records

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// SafeFolderName keeps letters, digits, spaces, '_' and '-' of title.
func SafeFolderName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// uniquePath returns dir/base+ext, numbering it when the name is taken.
func uniquePath(fs afero.Fs, dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for i := 1; ; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}
