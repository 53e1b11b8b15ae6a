package cli

import (
	"github.com/spf13/cobra"

	"github.com/chicogong/media-tools/pkg/video"
)

func newVideoCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Convert, resize, rotate, flip, mute or watermark videos",
	}

	cmd.AddCommand(
		newConvertCommand(g),
		newResizeCommand(g),
		newRotateCommand(g),
		newFlipCommand(g),
		newMuteCommand(g),
		newWatermarkCommand(g),
	)
	return cmd
}

// addOutputFlag registers the required --output flag shared by every subcommand
func addOutputFlag(cmd *cobra.Command, files *video.Files) {
	cmd.Flags().StringVarP(&files.Output, "output", "o", "", "output file (local path, file://, s3://)")
	_ = cmd.MarkFlagRequired("output")
}

func newConvertCommand(g *globalOptions) *cobra.Command {
	var opts video.ConvertOptions

	cmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Convert a video to another container format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			outcome, err := s.service.Convert(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	cmd.Flags().BoolVarP(&opts.SkipEncoding, "skip-encoding", "s", false, "copy streams instead of re-encoding")
	return cmd
}

func newResizeCommand(g *globalOptions) *cobra.Command {
	var opts video.ResizeOptions

	cmd := &cobra.Command{
		Use:   "resize INPUT",
		Short: "Resize a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			outcome, err := s.service.Resize(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	f := cmd.Flags()
	f.IntVarP(&opts.Width, "width", "w", 0, "target width in pixels (or percent)")
	f.IntVarP(&opts.Height, "height", "H", 0, "target height in pixels (or percent)")
	f.BoolVar(&opts.WidthAsPercentage, "width-as-percentage", false, "treat --width as a percentage of the source width")
	f.BoolVar(&opts.HeightAsPercentage, "height-as-percentage", false, "treat --height as a percentage of the source height")
	f.BoolVarP(&opts.KeepRatio, "keep-ratio", "r", false, "fit inside width x height keeping the aspect ratio")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func newRotateCommand(g *globalOptions) *cobra.Command {
	var opts video.RotateOptions

	cmd := &cobra.Command{
		Use:   "rotate INPUT",
		Short: "Rotate a video clockwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			outcome, err := s.service.Rotate(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	f := cmd.Flags()
	f.Float64VarP(&opts.Angle, "angle", "a", 0, "rotation angle in degrees")
	f.BoolVarP(&opts.PreserveSize, "preserve-size", "p", false, "keep the original frame size")
	f.StringVarP(&opts.FillColor, "fill-color", "f", "", "fill color for uncovered areas, e.g. \"(255, 255, 255)\"")
	_ = cmd.MarkFlagRequired("angle")
	return cmd
}

func newFlipCommand(g *globalOptions) *cobra.Command {
	var opts video.FlipOptions

	cmd := &cobra.Command{
		Use:   "flip INPUT",
		Short: "Mirror a video horizontally and/or vertically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			outcome, err := s.service.Flip(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	cmd.Flags().BoolVarP(&opts.Horizontal, "horizontal", "H", false, "flip horizontally")
	cmd.Flags().BoolVarP(&opts.Vertical, "vertical", "v", false, "flip vertically")
	return cmd
}

func newMuteCommand(g *globalOptions) *cobra.Command {
	var opts video.MuteOptions

	cmd := &cobra.Command{
		Use:   "mute INPUT",
		Short: "Remove the audio track from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			outcome, err := s.service.Mute(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	return cmd
}

func newWatermarkCommand(g *globalOptions) *cobra.Command {
	opts := video.DefaultWatermarkOptions()
	position := string(opts.Position)

	cmd := &cobra.Command{
		Use:   "watermark INPUT",
		Short: "Overlay an image on a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.setup(cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			opts.Position = video.Position(position)
			outcome, err := s.service.Watermark(cmd.Context(), opts)
			return s.finish(cmd, outcome, err)
		},
	}
	addOutputFlag(cmd, &opts.Files)
	f := cmd.Flags()
	f.StringVarP(&opts.Watermark, "watermark", "w", "", "watermark image")
	f.StringVarP(&position, "position", "p", position, "top-left, top-right, center, bottom-left or bottom-right")
	f.Float64VarP(&opts.Opacity, "opacity", "O", opts.Opacity, "watermark opacity between 0 and 1")
	f.Float64VarP(&opts.Scale, "scale", "s", opts.Scale, "watermark width as a fraction of the video width")
	_ = cmd.MarkFlagRequired("watermark")
	return cmd
}
