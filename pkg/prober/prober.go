// Package prober probes media files using ffprobe
package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chicogong/media-tools/pkg/binpath"
)

// Prober probes media files using ffprobe
type Prober struct {
	ffprobePath string
	lookupErr   error
}

// ProberOption is a functional option for Prober
type ProberOption func(*Prober)

// WithFFprobePath sets a custom ffprobe binary path
func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		p.ffprobePath = path
		p.lookupErr = nil
	}
}

// WithResolver locates ffprobe through r
func WithResolver(r *binpath.Resolver) ProberOption {
	return func(p *Prober) {
		p.ffprobePath, p.lookupErr = r.Lookup("ffprobe")
	}
}

// NewProber creates a new Prober instance
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{}
	p.ffprobePath, p.lookupErr = binpath.NewResolver(nil).Lookup("ffprobe")

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Path returns the resolved ffprobe path, empty if none was found
func (p *Prober) Path() string {
	return p.ffprobePath
}

// Probe probes a media file and returns its metadata
func (p *Prober) Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	args := []string{
		"-v", "quiet", // Suppress logs
		"-print_format", "json", // Output JSON
		"-show_format", // Show format info
		"-show_streams", // Show stream info
		filePath,
	}

	output, err := p.run(ctx, filePath, args)
	if err != nil {
		return nil, err
	}

	info, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, &ProbeError{Kind: ErrProbeParse, Path: filePath, Err: err}
	}
	return info, nil
}

// Dimensions returns the width and height of the first video stream
func (p *Prober) Dimensions(ctx context.Context, filePath string) (int, int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		filePath,
	}

	output, err := p.run(ctx, filePath, args)
	if err != nil {
		return 0, 0, err
	}

	return parseDimensions(filePath, output)
}

// run executes ffprobe and classifies failures
func (p *Prober) run(ctx context.Context, filePath string, args []string) ([]byte, error) {
	if p.ffprobePath == "" || p.lookupErr != nil {
		return nil, &ProbeError{Kind: ErrProbeNotFound, Path: filePath, Err: p.lookupErr}
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, &ProbeError{Kind: ErrProbeNotFound, Path: filePath, Err: err}
		}
		if ctx.Err() != nil {
			return nil, &ProbeError{Kind: ErrProbeIO, Path: filePath, Err: ctx.Err()}
		}
		return nil, &ProbeError{
			Kind:   ErrProbeIO,
			Path:   filePath,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return output, nil
}

// dimensionsOutput is the JSON shape of a stream=width,height query
type dimensionsOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

func parseDimensions(filePath string, data []byte) (int, int, error) {
	var out dimensionsOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, 0, &ProbeError{Kind: ErrProbeParse, Path: filePath, Err: err}
	}
	if len(out.Streams) == 0 {
		return 0, 0, &ProbeError{Kind: ErrNoVideoStream, Path: filePath}
	}

	width, height := out.Streams[0].Width, out.Streams[0].Height
	if width <= 0 || height <= 0 {
		return 0, 0, &ProbeError{
			Kind: ErrProbeParse,
			Path: filePath,
			Err:  fmt.Errorf("invalid dimensions %dx%d", width, height),
		}
	}
	return width, height, nil
}

// ffprobeOutput represents the raw JSON output from ffprobe
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	StartTime  string `json:"start_time"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`

	// Video fields
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	RFrameRate  string `json:"r_frame_rate"`
	PixelFormat string `json:"pix_fmt"`

	// Audio fields
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`

	// Common fields
	BitRate  string `json:"bit_rate"`
	Duration string `json:"duration"`
}

// parseFFprobeOutput parses ffprobe JSON output into MediaInfo
func parseFFprobeOutput(data []byte) (*MediaInfo, error) {
	var output ffprobeOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{}

	info.Format = FormatInfo{
		Filename:  output.Format.Filename,
		Format:    output.Format.FormatName,
		Duration:  parseDuration(output.Format.Duration),
		Size:      parseInt64(output.Format.Size),
		BitRate:   parseInt64(output.Format.BitRate),
		StartTime: parseDuration(output.Format.StartTime),
	}

	for _, stream := range output.Streams {
		switch stream.CodecType {
		case "video":
			info.VideoStreams = append(info.VideoStreams, VideoStream{
				Index:       stream.Index,
				Codec:       stream.CodecName,
				Width:       stream.Width,
				Height:      stream.Height,
				FrameRate:   parseFrameRate(stream.RFrameRate),
				PixelFormat: stream.PixelFormat,
				BitRate:     parseInt64(stream.BitRate),
				Duration:    parseDuration(stream.Duration),
			})
		case "audio":
			info.AudioStreams = append(info.AudioStreams, AudioStream{
				Index:      stream.Index,
				Codec:      stream.CodecName,
				SampleRate: parseInt(stream.SampleRate),
				Channels:   stream.Channels,
				BitRate:    parseInt64(stream.BitRate),
				Duration:   parseDuration(stream.Duration),
			})
		}
	}

	return info, nil
}

// parseDuration parses a duration string from ffprobe (seconds as float)
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// parseInt64 parses an int64 from string
func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt parses an int from string
func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseFrameRate parses a frame rate from ffprobe format (e.g., "30/1" or "30000/1001")
func parseFrameRate(s string) float64 {
	if s == "" {
		return 0
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		// Try parsing as plain float
		rate, _ := strconv.ParseFloat(s, 64)
		return rate
	}

	numerator, err1 := strconv.ParseFloat(parts[0], 64)
	denominator, err2 := strconv.ParseFloat(parts[1], 64)

	if err1 != nil || err2 != nil || denominator == 0 {
		return 0
	}

	return numerator / denominator
}
