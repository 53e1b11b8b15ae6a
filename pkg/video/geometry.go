package video

import "math"

// Position is where a watermark is placed on the video
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	Center      Position = "center"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
)

// Positions lists every valid Position
var Positions = []Position{TopLeft, TopRight, Center, BottomLeft, BottomRight}

// percentOf returns pct percent of dim, with pct clamped to [0, 100]
func percentOf(dim, pct int) int {
	pct = max(0, min(pct, 100))
	return int(math.Round(float64(dim) * float64(pct) / 100))
}

// keepRatio adjusts whichever of width or height deviates least from the
// source aspect ratio, rounding the adjusted side up to an even value
func keepRatio(srcWidth, srcHeight, width, height int) (int, int) {
	ratio := float64(srcWidth) / float64(srcHeight)

	possibleWidth := int(math.Round(float64(height) * ratio))
	possibleHeight := int(math.Round(float64(width) / ratio))

	widthDiff := abs(width - possibleWidth)
	heightDiff := abs(height - possibleHeight)

	if widthDiff < heightDiff {
		return roundUpEven(possibleWidth), height
	}
	return width, roundUpEven(possibleHeight)
}

// rotatedSize returns the bounding box of a width x height frame rotated by
// degrees
func rotatedSize(width, height int, degrees float64) (int, int) {
	rad := degrees * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))

	w := math.Round(float64(width)*cos + float64(height)*sin)
	h := math.Round(float64(width)*sin + float64(height)*cos)
	return int(w), int(h)
}

// watermarkSize scales a mark to fraction of the video width, keeping the
// mark's aspect ratio
func watermarkSize(videoWidth, markWidth, markHeight int, fraction float64) (int, int) {
	w := max(1, int(math.Round(float64(videoWidth)*fraction)))
	h := max(1, int(math.Round(float64(w)*float64(markHeight)/float64(markWidth))))
	return w, h
}

// watermarkOffset returns the overlay's top-left corner for pos
func watermarkOffset(pos Position, videoWidth, videoHeight, markWidth, markHeight int) (int, int) {
	right := videoWidth - markWidth
	bottom := videoHeight - markHeight

	switch pos {
	case TopLeft:
		return 0, 0
	case TopRight:
		return right, 0
	case BottomLeft:
		return 0, bottom
	case BottomRight:
		return right, bottom
	default:
		return right / 2, bottom / 2
	}
}

func roundUpEven(v int) int {
	if v%2 != 0 {
		return v + 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
