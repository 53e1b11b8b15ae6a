// Package video implements the video subcommands on top of filter graphs.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chicogong/media-tools/pkg/binpath"
	"github.com/chicogong/media-tools/pkg/executor"
	"github.com/chicogong/media-tools/pkg/filtergraph"
	"github.com/chicogong/media-tools/pkg/prober"
	"github.com/chicogong/media-tools/pkg/storage"
)

// Prober reads media properties
type Prober interface {
	Probe(ctx context.Context, path string) (*prober.MediaInfo, error)
	Dimensions(ctx context.Context, path string) (int, int, error)
}

// Runner executes ffmpeg invocations
type Runner interface {
	Run(ctx context.Context, inv *executor.Invocation, opts *executor.RunOptions) (*executor.Result, error)
}

// Stager moves inputs and outputs between storage and local disk
type Stager interface {
	CreateStagingDir(runID string) (string, error)
	Cleanup(dir string)
	Stage(ctx context.Context, ref, dir string) (string, error)
	OutputPath(ref, dir string) (string, error)
	Publish(ctx context.Context, localPath, ref string) error
}

// Outcome describes a finished command
type Outcome struct {
	RunID   string
	Output  string
	Args    []string
	Elapsed time.Duration
}

// Service runs video commands
type Service struct {
	prober     Prober
	runner     Runner
	stager     Stager
	resolver   *binpath.Resolver
	logger     zerolog.Logger
	validate   *validator.Validate
	extraArgs  []string
	onProgress func(*executor.Progress)
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithResolver sets how relative local paths are made absolute
func WithResolver(r *binpath.Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithExtraArgs appends raw ffmpeg arguments to every command
func WithExtraArgs(args ...string) Option {
	return func(s *Service) {
		s.extraArgs = append(s.extraArgs, args...)
	}
}

// WithProgress receives encoding progress updates
func WithProgress(fn func(*executor.Progress)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// NewService creates a video service
func NewService(p Prober, r Runner, st Stager, opts ...Option) *Service {
	s := &Service{
		prober:   p,
		runner:   r,
		stager:   st,
		logger:   zerolog.Nop(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = binpath.NewResolver(nil)
	}
	return s
}

// Convert changes a video's container, re-encoding unless SkipEncoding is set
func (s *Service) Convert(ctx context.Context, opts ConvertOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}
	if err := CheckFormat(opts.Output); err != nil {
		return nil, err
	}

	return s.run(ctx, "convert", opts.Files, nil, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		stream := filtergraph.NewStream(0, inputs[0])
		if opts.SkipEncoding {
			stream.SkipEncoding()
		}
		return stream, nil
	})
}

// Resize scales a video, optionally by percentage or keeping its aspect ratio
func (s *Service) Resize(ctx context.Context, opts ResizeOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}

	return s.run(ctx, "resize", opts.Files, nil, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		srcWidth, srcHeight, err := s.prober.Dimensions(ctx, inputs[0])
		if err != nil {
			return nil, err
		}

		width, height := opts.Width, opts.Height
		if opts.WidthAsPercentage {
			width = percentOf(srcWidth, width)
		}
		if opts.HeightAsPercentage {
			height = percentOf(srcHeight, height)
		}
		if opts.KeepRatio {
			width, height = keepRatio(srcWidth, srcHeight, width, height)
		}

		s.logger.Info().
			Int("width", width).
			Int("height", height).
			Int("original_width", srcWidth).
			Int("original_height", srcHeight).
			Msg("resizing video")

		return filtergraph.NewStream(0, inputs[0]).Scale(width, height), nil
	})
}

// Rotate turns a video clockwise. Unless PreserveSize is set the frame grows
// to the rotated bounding box and the uncovered area is filled.
func (s *Service) Rotate(ctx context.Context, opts RotateOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}
	fill, err := ParseColor(opts.FillColor)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, "rotate", opts.Files, nil, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		stream := filtergraph.NewStream(0, inputs[0])
		if opts.PreserveSize {
			return stream.Rotate(opts.Angle), nil
		}

		width, height, err := s.prober.Dimensions(ctx, inputs[0])
		if err != nil {
			return nil, err
		}
		newWidth, newHeight := rotatedSize(width, height, opts.Angle)

		return stream.
			Pad(max(newWidth, width), max(newHeight, height), fill).
			Rotate(opts.Angle).
			Crop(newWidth, newHeight), nil
	})
}

// Flip mirrors a video horizontally, vertically or both
func (s *Service) Flip(ctx context.Context, opts FlipOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}

	return s.run(ctx, "flip", opts.Files, nil, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		stream := filtergraph.NewStream(0, inputs[0])
		if opts.Horizontal {
			stream.HorizontalFlip()
		}
		if opts.Vertical {
			stream.VerticalFlip()
		}
		return stream, nil
	})
}

// Mute removes a video's audio track
func (s *Service) Mute(ctx context.Context, opts MuteOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}

	return s.run(ctx, "mute", opts.Files, nil, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		return filtergraph.NewStream(0, inputs[0]).RemoveAudio(), nil
	})
}

// Watermark overlays an image on a video, scaled to a fraction of the
// video's width
func (s *Service) Watermark(ctx context.Context, opts WatermarkOptions) (*Outcome, error) {
	if err := validateOptions(s.validate, opts); err != nil {
		return nil, err
	}
	if opts.Position == "" {
		opts.Position = Center
	}

	extra := []string{opts.Watermark}
	return s.run(ctx, "watermark", opts.Files, extra, func(ctx context.Context, inputs []string) (*filtergraph.Stream, error) {
		videoWidth, videoHeight, err := s.prober.Dimensions(ctx, inputs[0])
		if err != nil {
			return nil, err
		}
		markWidth, markHeight, err := s.prober.Dimensions(ctx, inputs[1])
		if err != nil {
			return nil, fmt.Errorf("watermark: %w", err)
		}

		width, height := watermarkSize(videoWidth, markWidth, markHeight, opts.Scale)
		x, y := watermarkOffset(opts.Position, videoWidth, videoHeight, width, height)

		mark := filtergraph.NewStream(1, inputs[1]).Scale(width, height)
		if opts.Opacity < 1 {
			mark.Opacity(opts.Opacity)
		}

		return filtergraph.NewStream(0, inputs[0]).Overlay(mark, x, y), nil
	})
}

type buildFunc func(ctx context.Context, inputs []string) (*filtergraph.Stream, error)

// run stages the inputs, builds the stream, runs ffmpeg and publishes the
// output
func (s *Service) run(ctx context.Context, command string, files Files, extra []string, build buildFunc) (*Outcome, error) {
	runID := uuid.NewString()
	logger := s.logger.With().
		Str("command", command).
		Str("run_id", runID).
		Logger()

	dir, err := s.stager.CreateStagingDir(runID)
	if err != nil {
		return nil, err
	}
	defer s.stager.Cleanup(dir)

	refs := append([]string{files.Input}, extra...)
	inputs := make([]string, len(refs))
	for i, ref := range refs {
		inputs[i], err = s.stager.Stage(ctx, s.localize(ref), dir)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", ref, err)
		}
	}

	outputRef := s.localize(files.Output)
	outputPath, err := s.stager.OutputPath(outputRef, dir)
	if err != nil {
		return nil, fmt.Errorf("output %s: %w", files.Output, err)
	}

	stream, err := build(ctx, inputs)
	if err != nil {
		return nil, err
	}
	stream.Output(outputPath).Args(s.extraArgs...)

	inv, err := executor.NewInvocation(stream)
	if err != nil {
		return nil, err
	}
	if !inv.Graph.Empty() {
		logger.Debug().Str("filter_complex", inv.Graph.Text).Msg("compiled filter graph")
	}

	runOpts := &executor.RunOptions{OnProgress: s.onProgress}
	if s.onProgress != nil {
		runOpts.TotalDuration = s.duration(ctx, logger, inputs[0])
	}

	result, err := s.runner.Run(ctx, inv, runOpts)
	if err != nil {
		return nil, err
	}

	if err := s.stager.Publish(ctx, outputPath, outputRef); err != nil {
		return nil, err
	}

	logger.Info().Str("output", outputRef).Dur("elapsed", result.Duration).Msg("video saved")

	return &Outcome{
		RunID:   runID,
		Output:  outputRef,
		Args:    result.Args,
		Elapsed: result.Duration,
	}, nil
}

// localize resolves relative local paths; remote references pass through
func (s *Service) localize(ref string) string {
	if storage.IsRemote(ref) || strings.HasPrefix(ref, "file://") {
		return ref
	}
	return s.resolver.Abs(ref)
}

// duration probes the input's length for progress percentages
func (s *Service) duration(ctx context.Context, logger zerolog.Logger, path string) time.Duration {
	info, err := s.prober.Probe(ctx, path)
	if err != nil {
		logger.Debug().Err(err).Msg("duration unavailable, progress will not show a percentage")
		return 0
	}
	return info.Format.Duration
}
