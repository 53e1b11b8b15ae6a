package executor

import (
	"fmt"
	"strconv"
)

// CommandBuilder turns invocations into ffmpeg argument lists
type CommandBuilder struct {
	globalArgs []string
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		globalArgs: []string{"-hide_banner", "-nostdin"},
	}
}

// Build generates the ffmpeg arguments, excluding the executable itself
func (cb *CommandBuilder) Build(inv *Invocation) ([]string, error) {
	if inv == nil || inv.OutputPath == "" {
		return nil, ErrMissingOutput
	}
	if len(inv.Inputs) == 0 {
		return nil, ErrNoInputs
	}

	args := append([]string(nil), cb.globalArgs...)

	// Filter labels like [1] address inputs by position
	for i, input := range inv.Inputs {
		if input.ID != i {
			return nil, fmt.Errorf("%w: input %q has id %d at position %d", ErrInputIndex, input.Path, input.ID, i)
		}
		args = append(args, "-i", input.Path)
	}

	filtered := inv.Graph != nil && !inv.Graph.Empty()
	if filtered {
		args = append(args,
			"-filter_complex", inv.Graph.Text,
			"-map", inv.Graph.Output.Pad(),
		)
	}

	switch {
	case !inv.KeepAudio:
		args = append(args, "-an")
	case filtered:
		// An explicit -map disables automatic stream selection
		args = append(args, "-map", strconv.Itoa(inv.Inputs[0].ID)+":a?")
	}

	args = append(args, inv.Args...)
	args = append(args, "-y", inv.OutputPath)

	return args, nil
}
