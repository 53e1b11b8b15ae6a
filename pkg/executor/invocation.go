package executor

import (
	"github.com/chicogong/media-tools/pkg/filtergraph"
)

// Invocation is everything needed to run ffmpeg for one stream
type Invocation struct {
	// Inputs are the media files in -i order; Inputs[0] is the primary stream
	Inputs []filtergraph.Input

	// Graph is the compiled filter graph; empty when no filters were applied
	Graph *filtergraph.Graph

	// OutputPath is the file ffmpeg writes
	OutputPath string

	// Args are passed through verbatim before the output path
	Args []string

	// KeepAudio maps the primary input's audio; false adds -an
	KeepAudio bool
}

// NewInvocation compiles s and captures its inputs, output and arguments
func NewInvocation(s *filtergraph.Stream) (*Invocation, error) {
	graph, err := filtergraph.Compile(s)
	if err != nil {
		return nil, err
	}

	return &Invocation{
		Inputs:     graph.Inputs,
		Graph:      graph,
		OutputPath: s.OutputPath(),
		Args:       s.Passthrough(),
		KeepAudio:  s.KeepsAudio(),
	}, nil
}

// WithArgs returns a copy of the invocation with extra passthrough arguments
func (inv *Invocation) WithArgs(args ...string) *Invocation {
	out := *inv
	out.Args = append(append([]string(nil), inv.Args...), args...)
	return &out
}
