package filtergraph

import (
	"fmt"
	"math"
	"strconv"
)

// Input is one media source participating in a graph
type Input struct {
	ID   int
	Path string

	owner *Stream
}

// Stream is one input plus the filter chain accumulated on it. Every
// chaining method appends exactly one node, advances the current label and
// returns the receiver. The first invalid call records an error (see Err);
// subsequent calls are ignored.
type Stream struct {
	id   int
	path string

	// nodes holds the stream's own filters plus the filters pulled in from
	// overlaid streams, in execution order
	nodes []Node

	// versions counts the results this stream produced itself
	versions int

	inputs []Input
	output string
	args   []string
	audio  bool
	sealed bool
	err    error
}

// NewStream creates a stream for the input at path. Ids must be unique
// within one invocation: 0 for the primary input, then 1, 2, ... for each
// overlay source.
func NewStream(id int, path string) *Stream {
	s := &Stream{
		id:    id,
		path:  path,
		audio: true,
	}
	s.inputs = []Input{{ID: id, Path: path, owner: s}}
	if id < 0 {
		s.err = fmt.Errorf("%w: %d", ErrInvalidStreamID, id)
	}
	return s
}

// ID returns the stream identity
func (s *Stream) ID() int {
	return s.id
}

// Path returns the source path
func (s *Stream) Path() string {
	return s.path
}

// Err returns the first error recorded while building the stream
func (s *Stream) Err() error {
	return s.err
}

// Version returns the index of the stream's latest own result, or -1 when
// no filter has been applied yet
func (s *Stream) Version() int {
	return s.versions - 1
}

// CurrentLabel names the stream's latest result
func (s *Stream) CurrentLabel() Label {
	if s.versions == 0 {
		return InitialLabel(s.id)
	}
	return ResultLabel(s.id, s.versions-1)
}

// Nodes returns a copy of the accumulated filter nodes
func (s *Stream) Nodes() []Node {
	nodes := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		nodes[i] = n.clone()
	}
	return nodes
}

// Inputs returns every source the graph reads, the stream itself first
func (s *Stream) Inputs() []Input {
	return append([]Input(nil), s.inputs...)
}

// OutputPath returns the configured destination, empty if unset
func (s *Stream) OutputPath() string {
	return s.output
}

// Passthrough returns the raw arguments emitted alongside the graph
func (s *Stream) Passthrough() []string {
	return append([]string(nil), s.args...)
}

// KeepsAudio reports whether the primary input's audio is carried over
func (s *Stream) KeepsAudio() bool {
	return s.audio
}

// Output records the destination path. It does not add a node.
func (s *Stream) Output(path string) *Stream {
	s.output = path
	return s
}

// SkipEncoding copies codec data instead of re-encoding
func (s *Stream) SkipEncoding() *Stream {
	return s.Args("-c", "copy")
}

// Args appends raw passthrough arguments
func (s *Stream) Args(args ...string) *Stream {
	if s.err != nil {
		return s
	}
	s.args = append(s.args, args...)
	return s
}

// Scale resizes the stream. -1 and -2 keep the aspect ratio as in ffmpeg.
func (s *Stream) Scale(width, height int) *Stream {
	if !scaleDimension(width) || !scaleDimension(height) || (width < 0 && height < 0) {
		return s.fail(fmt.Errorf("%w: scale %dx%d", ErrInvalidDimensions, width, height))
	}
	return s.apply(OpScale, strconv.Itoa(width), strconv.Itoa(height))
}

// Crop keeps a centered width x height window
func (s *Stream) Crop(width, height int) *Stream {
	if width <= 0 || height <= 0 {
		return s.fail(fmt.Errorf("%w: crop %dx%d", ErrInvalidDimensions, width, height))
	}
	return s.apply(OpCrop, strconv.Itoa(width), strconv.Itoa(height))
}

// Pad centers the stream on a width x height canvas filled with color
func (s *Stream) Pad(width, height int, color string) *Stream {
	if width <= 0 || height <= 0 {
		return s.fail(fmt.Errorf("%w: pad %dx%d", ErrInvalidDimensions, width, height))
	}
	if color == "" {
		color = "black"
	}
	return s.apply(OpPad, strconv.Itoa(width), strconv.Itoa(height), "(ow-iw)/2", "(oh-ih)/2", color)
}

// Rotate turns the stream clockwise by degrees
func (s *Stream) Rotate(degrees float64) *Stream {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return s.fail(fmt.Errorf("%w: %v", ErrInvalidAngle, degrees))
	}
	return s.apply(OpRotate, formatFloat(degrees)+"*PI/180")
}

// HorizontalFlip mirrors the stream left to right
func (s *Stream) HorizontalFlip() *Stream {
	return s.apply(OpHorizontalFlip)
}

// VerticalFlip mirrors the stream top to bottom
func (s *Stream) VerticalFlip() *Stream {
	return s.apply(OpVerticalFlip)
}

// RemoveAudio passes video through unchanged and drops the audio track
func (s *Stream) RemoveAudio() *Stream {
	s.apply(OpRemoveAudio)
	if s.err == nil {
		s.audio = false
	}
	return s
}

// Opacity converts the stream to RGBA and scales its alpha channel
func (s *Stream) Opacity(value float64) *Stream {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return s.fail(fmt.Errorf("%w: %v", ErrInvalidOpacity, value))
	}
	return s.apply(OpOpacity, "rgba,colorchannelmixer=aa="+formatFloat(value))
}

// Overlay composites other onto this stream with its top-left corner at
// (x, y). The nodes other has accumulated are copied in front of the
// overlay node and other is sealed: chaining on it afterwards records
// ErrStreamSealed.
func (s *Stream) Overlay(other *Stream, x, y int) *Stream {
	if s.err != nil {
		return s
	}
	if other == nil {
		return s.fail(ErrNilStream)
	}
	if other == s {
		return s.fail(fmt.Errorf("%w: stream %d overlays itself", ErrCircularOverlay, s.id))
	}
	if other.err != nil {
		return s.fail(fmt.Errorf("overlay stream %d: %w", other.id, other.err))
	}
	for _, in := range other.inputs {
		if in.owner == s {
			return s.fail(fmt.Errorf("%w: stream %d already consumes stream %d", ErrCircularOverlay, other.id, s.id))
		}
	}
	if s.sealed {
		return s.fail(fmt.Errorf("%w: stream %d", ErrStreamSealed, s.id))
	}
	for _, in := range other.inputs {
		for _, have := range s.inputs {
			if in.ID == have.ID {
				return s.fail(fmt.Errorf("%w: %d", ErrDuplicateStreamID, in.ID))
			}
		}
	}

	for _, n := range other.nodes {
		s.nodes = append(s.nodes, n.clone())
	}
	s.inputs = append(s.inputs, other.inputs...)
	other.sealed = true

	from := s.CurrentLabel()
	to := ResultLabel(s.id, s.versions)
	s.versions++
	s.nodes = append(s.nodes, newNode(OpOverlay, to, []Label{from, other.CurrentLabel()}, strconv.Itoa(x), strconv.Itoa(y)))
	return s
}

// apply appends a single-input node that consumes the current label
func (s *Stream) apply(op Op, args ...string) *Stream {
	if s.err != nil {
		return s
	}
	if s.sealed {
		return s.fail(fmt.Errorf("%w: stream %d", ErrStreamSealed, s.id))
	}
	from := s.CurrentLabel()
	to := ResultLabel(s.id, s.versions)
	s.versions++
	s.nodes = append(s.nodes, newNode(op, to, []Label{from}, args...))
	return s
}

func (s *Stream) fail(err error) *Stream {
	if s.err == nil {
		s.err = err
	}
	return s
}

func scaleDimension(v int) bool {
	return v > 0 || v == -1 || v == -2
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
