package filtergraph_test

import (
	"fmt"

	"github.com/chicogong/media-tools/pkg/filtergraph"
)

// ExampleCompile shows a watermark composited onto a resized video
func ExampleCompile() {
	mark := filtergraph.NewStream(1, "logo.png").
		Scale(50, 50).
		Opacity(0.8)

	video := filtergraph.NewStream(0, "in.mp4").
		Scale(640, 360).
		Overlay(mark, 10, 20).
		Output("out.mp4")

	graph, err := filtergraph.Compile(video)
	if err != nil {
		fmt.Println("compile failed:", err)
		return
	}

	fmt.Println(graph.Text)
	fmt.Println(graph.Output)

	// Output:
	// [0]scale=640:360[r00];[1]scale=50:50[r10];[r10]format=rgba,colorchannelmixer=aa=0.8[r11];[r00][r11]overlay=10:20[r01]
	// r01
}
