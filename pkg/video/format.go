package video

import (
	"fmt"
	"path"
	"strings"
)

// SupportedFormats lists the container extensions convert can target
var SupportedFormats = []string{"mp4", "mkv", "mov", "webm", "avi", "m4v", "flv", "ts", "gif"}

// FormatOf returns the lower-cased extension of p without the dot
func FormatOf(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// CheckFormat returns ErrUnsupportedFormat unless p ends in a supported extension
func CheckFormat(p string) error {
	format := FormatOf(p)
	for _, supported := range SupportedFormats {
		if format == supported {
			return nil
		}
	}
	if format == "" {
		return fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, p)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}
