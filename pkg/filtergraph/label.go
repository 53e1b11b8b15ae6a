package filtergraph

import "strconv"

// Label names an edge of the filter graph. It doubles as the ffmpeg pad
// name, rendered between square brackets.
type Label string

// InitialLabel returns the label of a stream before any filter is applied
func InitialLabel(streamID int) Label {
	return Label(strconv.Itoa(streamID))
}

// ResultLabel returns the label produced by the version-th filter a stream
// applies to itself (version counts from 0)
func ResultLabel(streamID, version int) Label {
	return Label("r" + strconv.Itoa(streamID) + strconv.Itoa(version))
}

// Pad renders the label in filter-graph pad syntax, e.g. "[r00]"
func (l Label) Pad() string {
	return "[" + string(l) + "]"
}

// String implements fmt.Stringer
func (l Label) String() string {
	return string(l)
}
