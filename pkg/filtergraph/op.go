package filtergraph

// Op identifies a filter operation
type Op string

const (
	OpScale          Op = "scale"
	OpCrop           Op = "crop"
	OpPad            Op = "pad"
	OpRotate         Op = "rotate"
	OpHorizontalFlip Op = "hflip"
	OpVerticalFlip   Op = "vflip"
	OpOverlay        Op = "overlay"
	OpOpacity        Op = "format"
	OpRemoveAudio    Op = "null"
)

// opSpec describes the shape every node of an operation must have
type opSpec struct {
	// inputs is the number of input pads the filter consumes
	inputs int
	// args is the exact number of arguments, or -1 when variable
	args int
}

var opSpecs = map[Op]opSpec{
	OpScale:          {inputs: 1, args: 2},
	OpCrop:           {inputs: 1, args: 2},
	OpPad:            {inputs: 1, args: 5},
	OpRotate:         {inputs: 1, args: 1},
	OpHorizontalFlip: {inputs: 1, args: 0},
	OpVerticalFlip:   {inputs: 1, args: 0},
	OpOverlay:        {inputs: 2, args: 2},
	OpOpacity:        {inputs: 1, args: 1},
	OpRemoveAudio:    {inputs: 1, args: 0},
}

// Inputs returns the number of input pads the operation consumes,
// or 0 for an unknown operation
func (o Op) Inputs() int {
	return opSpecs[o].inputs
}

// Known reports whether the operation is part of the supported set
func (o Op) Known() bool {
	_, ok := opSpecs[o]
	return ok
}
