package prober

import (
	"errors"
	"fmt"
)

// Probe error kinds, matched with errors.Is
var (
	// ErrProbeNotFound is returned when the ffprobe executable is missing
	ErrProbeNotFound = errors.New("ffprobe executable not found")

	// ErrProbeIO covers spawn failures and non-zero ffprobe exits
	ErrProbeIO = errors.New("ffprobe failed")

	// ErrProbeParse is returned when ffprobe output cannot be decoded
	ErrProbeParse = errors.New("failed to parse ffprobe output")

	// ErrNoVideoStream is returned when dimensions are requested for media
	// without a video stream
	ErrNoVideoStream = errors.New("no video stream")
)

// ProbeError describes a failed probe of Path
type ProbeError struct {
	Kind   error
	Path   string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause
func (e *ProbeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
