package filtergraph

import (
	"fmt"
	"strings"
)

// Node is one filter step: it consumes one or two labels and produces one.
// Nodes are immutable once appended to a stream.
type Node struct {
	Inputs []Label
	Output Label
	Op     Op
	Args   []string
}

func newNode(op Op, output Label, inputs []Label, args ...string) Node {
	return Node{
		Inputs: append([]Label(nil), inputs...),
		Output: output,
		Op:     op,
		Args:   append([]string(nil), args...),
	}
}

// clone returns a deep copy so a stream never shares slices with another
func (n Node) clone() Node {
	return newNode(n.Op, n.Output, n.Inputs, n.Args...)
}

// Render serializes the node as [in1][in2]name=arg1:arg2[out].
// Nodes without arguments omit the "=".
func (n Node) Render() string {
	var b strings.Builder
	for _, in := range n.Inputs {
		b.WriteString(in.Pad())
	}
	b.WriteString(string(n.Op))
	if len(n.Args) > 0 {
		b.WriteByte('=')
		b.WriteString(strings.Join(n.Args, ":"))
	}
	b.WriteString(n.Output.Pad())
	return b.String()
}

// validate checks the node against the operation table
func (n Node) validate() error {
	spec, ok := opSpecs[n.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, n.Op)
	}
	if len(n.Inputs) != spec.inputs {
		return fmt.Errorf("%w: %s takes %d input(s), got %d", ErrArity, n.Op, spec.inputs, len(n.Inputs))
	}
	if spec.args >= 0 && len(n.Args) != spec.args {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrArity, n.Op, spec.args, len(n.Args))
	}
	if n.Output == "" {
		return fmt.Errorf("%w: %s has no output label", ErrArity, n.Op)
	}
	return nil
}
