package executor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Progress is one ffmpeg status update
type Progress struct {
	Frame   int           // Frames encoded so far
	FPS     float64       // Encoding frames per second
	Time    time.Duration // Position in the output
	Size    int64         // Output size in bytes
	Bitrate float64       // kbit/s
	Speed   float64       // Multiple of realtime
	Percent float64       // 0 when the total duration is unknown
}

// statusField matches "key=value" pairs; ffmpeg pads values with spaces
var statusField = regexp.MustCompile(`(\w+)=\s*(\S+)`)

// ProgressParser turns ffmpeg status lines into Progress values
type ProgressParser struct {
	totalDuration time.Duration
}

// NewProgressParser creates a parser with no known total duration
func NewProgressParser() *ProgressParser {
	return &ProgressParser{}
}

// SetTotalDuration enables Percent on parsed updates
func (pp *ProgressParser) SetTotalDuration(d time.Duration) {
	pp.totalDuration = d
}

// ParseLine returns the update carried by line, or nil for any other
// output. Video runs report frame=, audio-only runs start at size=.
func (pp *ProgressParser) ParseLine(line string) *Progress {
	if !strings.Contains(line, "frame=") && !strings.Contains(line, "time=") {
		return nil
	}

	p := &Progress{}
	for _, m := range statusField.FindAllStringSubmatch(line, -1) {
		key, value := m[1], m[2]
		if value == "N/A" {
			continue
		}

		switch key {
		case "frame":
			p.Frame, _ = strconv.Atoi(value)
		case "fps":
			p.FPS, _ = strconv.ParseFloat(value, 64)
		case "time":
			p.Time = parseFFmpegTime(value)
		case "size", "Lsize":
			p.Size = parseSize(value)
		case "bitrate":
			p.Bitrate, _ = strconv.ParseFloat(strings.TrimSuffix(value, "kbits/s"), 64)
		case "speed":
			p.Speed, _ = strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64)
		}
	}

	p.Percent = pp.ComputePercentage(p)
	return p
}

// ComputePercentage reports how far p is through the total duration,
// capped at 100
func (pp *ProgressParser) ComputePercentage(p *Progress) float64 {
	if pp.totalDuration <= 0 {
		return 0
	}
	return math.Min(float64(p.Time)/float64(pp.totalDuration)*100, 100)
}

// parseSize reads sizes printed as kB (older ffmpeg) or KiB
func parseSize(value string) int64 {
	for _, unit := range []string{"KiB", "kB"} {
		if n, ok := strings.CutSuffix(value, unit); ok {
			kb, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return 0
			}
			return kb * 1024
		}
	}
	return 0
}

// parseFFmpegTime parses HH:MM:SS.frac, rounded to the millisecond
func parseFFmpegTime(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(math.Round(seconds*1000))*time.Millisecond
}
