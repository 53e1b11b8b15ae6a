// Package cli implements the mediatools command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chicogong/media-tools/pkg/binpath"
	"github.com/chicogong/media-tools/pkg/config"
	"github.com/chicogong/media-tools/pkg/executor"
	"github.com/chicogong/media-tools/pkg/prober"
	"github.com/chicogong/media-tools/pkg/storage"
	"github.com/chicogong/media-tools/pkg/video"
)

// globalOptions holds the persistent flags that are not config keys
type globalOptions struct {
	configFile string
	ffmpegArgs string
	noProgress bool
}

// session is everything a subcommand needs to run
type session struct {
	cfg      *config.Config
	logger   zerolog.Logger
	service  *video.Service
	progress *progressReporter
}

// NewRootCommand builds the mediatools command tree writing to stdout and stderr
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "mediatools",
		Short:         "Edit videos with ffmpeg filter graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/mediatools/config.yaml)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Duration("timeout", 0, "abort ffmpeg after this long (0 disables)")
	pf.StringVar(&g.ffmpegArgs, "ffmpeg-args", "", "extra arguments passed to ffmpeg before the output")
	pf.BoolVar(&g.noProgress, "no-progress", false, "do not show a progress bar")

	root.AddCommand(newVideoCommand(g))
	return root
}

// Execute runs the command tree with args
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// setup loads configuration and wires the video service for cmd
func (g *globalOptions) setup(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(config.LoadOptions{File: g.configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if g.noProgress {
		cfg.Progress = false
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())

	extra, err := shlex.Split(g.ffmpegArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid --ffmpeg-args: %w", err)
	}

	env, err := binpath.LoadEnv(cmd.Context())
	if err != nil {
		return nil, err
	}
	var resolverOpts []binpath.Option
	if cfg.FFmpegPath != "" {
		resolverOpts = append(resolverOpts, binpath.WithOverride("ffmpeg", cfg.FFmpegPath))
	}
	if cfg.FFprobePath != "" {
		resolverOpts = append(resolverOpts, binpath.WithOverride("ffprobe", cfg.FFprobePath))
	}
	resolver := binpath.NewResolver(env, resolverOpts...)

	probe := prober.NewProber(prober.WithResolver(resolver))
	runner := executor.NewExecutor(
		executor.WithResolver(resolver),
		executor.WithLogger(logger),
		executor.WithTimeout(cfg.Timeout),
	)
	stager := storage.NewManager(storage.ManagerConfig{
		AllowPrivateNetworks: cfg.AllowPrivateNetworks,
		S3:                   cfg.S3,
		Logger:               logger,
	})

	s := &session{cfg: cfg, logger: logger}
	opts := []video.Option{
		video.WithLogger(logger),
		video.WithResolver(resolver),
		video.WithExtraArgs(extra...),
	}
	if cfg.Progress && isTerminal(cmd.ErrOrStderr()) {
		s.progress = newProgressReporter(cmd.ErrOrStderr(), cmd.Name())
		opts = append(opts, video.WithProgress(s.progress.Update))
	}
	s.service = video.NewService(probe, runner, stager, opts...)

	logger.Debug().Stringer("config", cfg).Msg("configuration loaded")
	return s, nil
}

// finish closes the progress bar and reports where the output went
func (s *session) finish(cmd *cobra.Command, outcome *video.Outcome, err error) error {
	if s.progress != nil {
		s.progress.Close(err == nil)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Video saved to %s\n", outcome.Output)
	return nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
