// Package filtergraph models ffmpeg filter graphs as chains of labeled
// filter nodes over one or more input streams, and serializes them into
// the -filter_complex mini-language.
package filtergraph

import (
	"fmt"
	"strings"
)

// Graph is the compiled form of a stream
type Graph struct {
	// Text is the -filter_complex argument; empty when there are no nodes
	Text string

	// Output is the label to map; empty when there are no nodes
	Output Label

	// Inputs lists the sources in -i order
	Inputs []Input

	// Nodes are the rendered nodes, in order
	Nodes []Node
}

// Empty reports whether the graph has no filters
func (g *Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// String implements fmt.Stringer
func (g *Graph) String() string {
	return g.Text
}

// Compile renders the stream's nodes in append order, joined by ";".
// It never mutates the stream, so compiling twice yields identical text.
func Compile(s *Stream) (*Graph, error) {
	if s == nil {
		return nil, ErrNilStream
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	nodes := s.Nodes()
	inputs := s.Inputs()

	// Labels that may be consumed: every input's initial label, then each
	// node's output as soon as it has been produced
	available := make(map[Label]bool, len(inputs)+len(nodes))
	for _, in := range inputs {
		available[InitialLabel(in.ID)] = true
	}
	produced := make(map[Label]int, len(nodes))

	parts := make([]string, 0, len(nodes))
	for i, n := range nodes {
		if err := n.validate(); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		for _, in := range n.Inputs {
			if !available[in] {
				return nil, fmt.Errorf("node %d: %w: %s", i, ErrDanglingLabel, in)
			}
		}
		if prev, ok := produced[n.Output]; ok {
			return nil, fmt.Errorf("%w: %s produced by nodes %d and %d", ErrLabelCollision, n.Output, prev, i)
		}
		produced[n.Output] = i
		available[n.Output] = true
		parts = append(parts, n.Render())
	}

	g := &Graph{
		Text:   strings.Join(parts, ";"),
		Inputs: inputs,
		Nodes:  nodes,
	}
	if len(nodes) > 0 {
		g.Output = s.CurrentLabel()
	}
	return g, nil
}
