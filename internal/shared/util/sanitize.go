package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName is returned for empty names and parent-directory segments.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens a browser-supplied file name for display and for
// the upstream multipart header. Path separators become underscores.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	for _, part := range strings.FieldsFunc(s, isSeparator) {
		if part == ".." {
			return "", ErrInvalidFileName
		}
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case isSeparator(r):
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." {
		return "", ErrInvalidFileName
	}
	return s, nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
