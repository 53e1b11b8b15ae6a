package video

import "errors"

var (
	// ErrUnsupportedFormat is returned when convert targets an unknown container
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidColor is returned for fill colors that are not (r, g, b[, a])
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidOptions wraps option validation failures
	ErrInvalidOptions = errors.New("invalid options")
)
