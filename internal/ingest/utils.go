package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docmeta/constants"
)

// AllowedExt reports whether files with ext have an extractor.
func AllowedExt(ext string) bool {
	return constants.IsSupportedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".") && base != ".."
}
