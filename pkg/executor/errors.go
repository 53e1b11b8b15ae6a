package executor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecutableNotFound is returned when ffmpeg cannot be located
	ErrExecutableNotFound = errors.New("ffmpeg executable not found")

	// ErrMissingOutput is returned when an invocation has no output path
	ErrMissingOutput = errors.New("no output path set")

	// ErrNoInputs is returned when an invocation has no input files
	ErrNoInputs = errors.New("no input files")

	// ErrInputIndex is returned when an input id does not match its -i position
	ErrInputIndex = errors.New("input id does not match its position")

	// ErrIO matches every *IOError
	ErrIO = errors.New("ffmpeg i/o failure")

	// ErrTimeout is returned when the run exceeds its deadline
	ErrTimeout = errors.New("ffmpeg timed out")

	// ErrCanceled is returned when the caller cancels the run
	ErrCanceled = errors.New("ffmpeg canceled")
)

// IOError wraps a failure to start or talk to the ffmpeg process
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports ErrIO so callers can match the category
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ExitError reports a non-zero ffmpeg exit status
type ExitError struct {
	Code   int
	Args   []string
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with status %d", e.Code)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
