package video

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFillColor is used when no fill color is given
const DefaultFillColor = "#000000"

// ParseColor converts "(r, g, b)" or "(r, g, b, a)" with 0-255 components
// into the "#RRGGBB[AA]" form ffmpeg accepts. Hex input is passed through
// upper-cased. An empty string yields DefaultFillColor.
func ParseColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFillColor, nil
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return "#" + strings.ToUpper(hex), nil
	}

	parts := strings.Split(strings.Trim(s, "()"), ",")
	if len(parts) != 3 && len(parts) != 4 {
		return "", fmt.Errorf("%w: %q: want 3 or 4 components", ErrInvalidColor, s)
	}

	var b strings.Builder
	b.WriteByte('#')
	for _, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		fmt.Fprintf(&b, "%02X", v)
	}

	return b.String(), nil
}
