package filtergraph

import "errors"

// Graph construction errors. Stream methods record the first one they hit
// and ignore every later call; Compile returns it.
var (
	ErrInvalidStreamID   = errors.New("invalid stream id")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidOpacity    = errors.New("opacity must be within [0, 1]")
	ErrInvalidAngle      = errors.New("rotation angle must be finite")
	ErrNilStream         = errors.New("overlay stream is nil")
	ErrCircularOverlay   = errors.New("circular overlay")
	ErrDuplicateStreamID = errors.New("duplicate stream id")
	ErrStreamSealed      = errors.New("stream already consumed by an overlay")

	// Compiler errors
	ErrUnknownOp      = errors.New("unknown filter operation")
	ErrArity          = errors.New("malformed filter node")
	ErrDanglingLabel  = errors.New("filter input references an unknown label")
	ErrLabelCollision = errors.New("duplicate output label")
)
