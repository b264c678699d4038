package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// SourceKey identifies a loaded dataset by its record and survey sources so
// that equivalent spellings of the same paths share an entry.
func SourceKey(records, surveys string) string {
	return makeKey("source", canonicalSource(records), canonicalSource(surveys))
}

func canonicalSource(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	l := strings.ToLower(src)
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return src
	}
	if abs, err := filepath.Abs(src); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(src)
}

func makeKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
