package filtergraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *Stream
		wantText  string
		wantLabel Label
	}{
		{
			name: "single scale",
			build: func() *Stream {
				return NewStream(0, "in.mp4").Scale(640, 360)
			},
			wantText:  "[0]scale=640:360[r00]",
			wantLabel: "r00",
		},
		{
			name: "chained flips",
			build: func() *Stream {
				return NewStream(0, "in.mp4").HorizontalFlip().VerticalFlip()
			},
			wantText:  "[0]hflip[r00];[r00]vflip[r01]",
			wantLabel: "r01",
		},
		{
			name: "overlay of a scaled stream",
			build: func() *Stream {
				mark := NewStream(1, "logo.png").Scale(50, 50)
				return NewStream(0, "in.mp4").Overlay(mark, 10, 20)
			},
			wantText:  "[1]scale=50:50[r10];[0][r10]overlay=10:20[r00]",
			wantLabel: "r00",
		},
		{
			name: "rotate with padding and crop",
			build: func() *Stream {
				return NewStream(0, "in.mp4").Pad(1400, 1400, "#000000").Rotate(45).Crop(1358, 1358)
			},
			wantText:  "[0]pad=1400:1400:(ow-iw)/2:(oh-ih)/2:#000000[r00];[r00]rotate=45*PI/180[r01];[r01]crop=1358:1358[r02]",
			wantLabel: "r02",
		},
		{
			name: "watermark with opacity after own filters",
			build: func() *Stream {
				mark := NewStream(1, "logo.png").Scale(64, 32).Opacity(0.5)
				return NewStream(0, "in.mp4").Scale(1280, 720).Overlay(mark, 0, 0)
			},
			wantText:  "[0]scale=1280:720[r00];[1]scale=64:32[r10];[r10]format=rgba,colorchannelmixer=aa=0.5[r11];[r00][r11]overlay=0:0[r01]",
			wantLabel: "r01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile(tt.build())
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, g.Text)
			assert.Equal(t, tt.wantLabel, g.Output)
			assert.Equal(t, tt.wantText, g.String())
		})
	}
}

func TestCompile_EmptyStream(t *testing.T) {
	g, err := Compile(NewStream(0, "in.mp4").Output("out.mp4"))
	require.NoError(t, err)

	assert.True(t, g.Empty())
	assert.Empty(t, g.Text)
	assert.Empty(t, g.Output)
	assert.Len(t, g.Inputs, 1)
}

func TestCompile_Deterministic(t *testing.T) {
	mark := NewStream(1, "logo.png").Scale(50, 50).Opacity(0.3)
	s := NewStream(0, "in.mp4").Rotate(15).Overlay(mark, 4, 8).VerticalFlip()

	first, err := Compile(s)
	require.NoError(t, err)
	second, err := Compile(s)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Output, second.Output)
}

func TestCompile_UniqueOutputLabels(t *testing.T) {
	ops := []func(*Stream){
		func(s *Stream) { s.Scale(320, 240) },
		func(s *Stream) { s.HorizontalFlip() },
		func(s *Stream) { s.VerticalFlip() },
		func(s *Stream) { s.Rotate(30) },
		func(s *Stream) { s.Crop(100, 100) },
		func(s *Stream) { s.Pad(400, 400, "white") },
		func(s *Stream) { s.Opacity(0.9) },
	}

	// Every prefix of a long chain, with an overlay inserted half way
	for n := 0; n <= 9; n++ {
		s := NewStream(0, "in.mp4")
		for i := 0; i < n; i++ {
			ops[i%len(ops)](s)
			if i == n/2 {
				s.Overlay(NewStream(1, "logo.png").Scale(8, 8).VerticalFlip(), 1, 1)
			}
		}

		g, err := Compile(s)
		require.NoError(t, err)

		seen := map[Label]bool{}
		for _, node := range g.Nodes {
			assert.False(t, seen[node.Output], "label %s repeated in %q", node.Output, g.Text)
			seen[node.Output] = true
			assert.Contains(t, g.Text, node.Output.Pad())
		}
	}
}

func TestCompile_OverlayOrdering(t *testing.T) {
	mark := NewStream(1, "logo.png").Scale(50, 50).HorizontalFlip().Opacity(0.5)
	s := NewStream(0, "in.mp4").VerticalFlip().Overlay(mark, 0, 0).Scale(100, 100)

	g, err := Compile(s)
	require.NoError(t, err)

	overlayAt := -1
	for i, n := range g.Nodes {
		if n.Op == OpOverlay {
			overlayAt = i
		}
	}
	require.NotEqual(t, -1, overlayAt)

	for i, n := range g.Nodes {
		if strings.HasPrefix(string(n.Output), "r1") {
			assert.Less(t, i, overlayAt, "node %s from the overlay source must precede the overlay", n.Output)
		}
	}
	assert.Equal(t, Label("r01"), g.Nodes[overlayAt].Output)
	assert.Equal(t, []Label{"r00", "r12"}, g.Nodes[overlayAt].Inputs)
}

func TestCompile_LabelCollision(t *testing.T) {
	// Stream 1's eleventh result and stream 11's first result both render as r110
	source := NewStream(1, "logo.png")
	for i := 0; i < 11; i++ {
		source.HorizontalFlip()
	}
	s := NewStream(11, "in.mp4").Overlay(source, 0, 0)
	require.NoError(t, s.Err())

	_, err := Compile(s)
	assert.ErrorIs(t, err, ErrLabelCollision)
}

func TestCompile_NilStream(t *testing.T) {
	_, err := Compile(nil)
	assert.ErrorIs(t, err, ErrNilStream)
}

func TestNode_Validate(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want error
	}{
		{"unknown op", Node{Inputs: []Label{"0"}, Output: "r00", Op: "blur"}, ErrUnknownOp},
		{"overlay with one input", Node{Inputs: []Label{"0"}, Output: "r00", Op: OpOverlay, Args: []string{"0", "0"}}, ErrArity},
		{"scale missing arg", Node{Inputs: []Label{"0"}, Output: "r00", Op: OpScale, Args: []string{"10"}}, ErrArity},
		{"missing output", Node{Inputs: []Label{"0"}, Op: OpHorizontalFlip}, ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.node.validate(), tt.want)
		})
	}
}

func TestCompile_DanglingLabel(t *testing.T) {
	s := NewStream(0, "in.mp4")
	s.nodes = append(s.nodes, newNode(OpHorizontalFlip, "r00", []Label{"r99"}))
	s.versions = 1

	_, err := Compile(s)
	assert.ErrorIs(t, err, ErrDanglingLabel)
}
