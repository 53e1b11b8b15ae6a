// Package executor runs ffmpeg for compiled filter graphs.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chicogong/media-tools/pkg/binpath"
)

const (
	defaultTailLines = 20
	defaultWaitDelay = 5 * time.Second
)

// Executor runs ffmpeg invocations
type Executor struct {
	resolver  *binpath.Resolver
	builder   *CommandBuilder
	logger    zerolog.Logger
	timeout   time.Duration
	tailLines int
}

// Option configures an Executor
type Option func(*Executor)

// WithResolver sets how the ffmpeg executable is located
func WithResolver(r *binpath.Resolver) Option {
	return func(e *Executor) {
		e.resolver = r
	}
}

// WithLogger sets the logger used for command and outcome logging
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithTimeout bounds every run; zero disables the limit
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithStderrTail sets how many trailing stderr lines are kept for errors
func WithStderrTail(lines int) Option {
	return func(e *Executor) {
		if lines > 0 {
			e.tailLines = lines
		}
	}
}

// NewExecutor creates a new executor
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		builder:   NewCommandBuilder(),
		logger:    zerolog.Nop(),
		tailLines: defaultTailLines,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = binpath.NewResolver(nil)
	}
	return e
}

// RunOptions contains per-run options
type RunOptions struct {
	// WorkDir is the working directory for ffmpeg
	WorkDir string

	// TotalDuration enables Progress.Percent when known
	TotalDuration time.Duration

	// OnProgress is called for progress updates
	OnProgress func(*Progress)

	// OnLog is called for every line ffmpeg prints on stdout or stderr.
	// Calls are serialized.
	OnLog func(string)
}

// Result describes a successful run
type Result struct {
	Path     string
	Args     []string
	Duration time.Duration
	Stderr   string
}

// BuildArgs returns the ffmpeg arguments for inv without running anything
func (e *Executor) BuildArgs(inv *Invocation) ([]string, error) {
	return e.builder.Build(inv)
}

// Run executes ffmpeg for inv and waits for it to finish
func (e *Executor) Run(ctx context.Context, inv *Invocation, opts *RunOptions) (*Result, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	args, err := e.builder.Build(inv)
	if err != nil {
		return nil, err
	}

	path, err := e.resolver.Lookup("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutableNotFound, err)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Dir = opts.WorkDir
	cmd.Cancel = func() error {
		return killTree(context.Background(), int32(cmd.Process.Pid))
	}
	cmd.WaitDelay = defaultWaitDelay

	if onLog := opts.OnLog; onLog != nil {
		var mu sync.Mutex
		serialized := *opts
		serialized.OnLog = func(line string) {
			mu.Lock()
			defer mu.Unlock()
			onLog(line)
		}
		opts = &serialized
	}

	parser := NewProgressParser()
	parser.SetTotalDuration(opts.TotalDuration)
	tail := newTailBuffer(e.tailLines)

	stderrR, stderrW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	cmd.Stderr = stderrW
	cmd.Stdout = stdoutW

	e.logger.Debug().
		Str("ffmpeg", path).
		Strs("args", args).
		Msg("starting ffmpeg")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		stderrW.Close()
		stdoutW.Close()
		if runCtx.Err() != nil {
			return nil, e.classify(runCtx, err, args, "")
		}
		if executableMissing(err, path) {
			return nil, fmt.Errorf("%w: %w", ErrExecutableNotFound, err)
		}
		return nil, &IOError{Op: "start", Err: err}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.streamStderr(stderrR, parser, tail, opts)
	}()
	go func() {
		defer wg.Done()
		e.streamStdout(stdoutR, opts)
	}()

	waitErr := cmd.Wait()
	stderrW.Close()
	stdoutW.Close()
	wg.Wait()

	elapsed := time.Since(start)
	stderr := tail.String()

	if waitErr != nil {
		err := e.classify(runCtx, waitErr, args, stderr)
		e.logger.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Msg("ffmpeg failed")
		return nil, err
	}

	e.logger.Info().
		Str("output", inv.OutputPath).
		Dur("elapsed", elapsed).
		Msg("ffmpeg finished")

	return &Result{
		Path:     path,
		Args:     args,
		Duration: elapsed,
		Stderr:   stderr,
	}, nil
}

// classify maps a Wait error onto the package's error kinds
func (e *Executor) classify(ctx context.Context, waitErr error, args []string, stderr string) error {
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
	case errors.Is(ctxErr, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
		return &ExitError{
			Code:   exitErr.ExitCode(),
			Args:   args,
			Stderr: stderr,
		}
	}

	return &IOError{Op: "wait", Err: waitErr}
}

// executableMissing reports whether a Start error means path itself does
// not exist. A missing working directory is an I/O failure instead.
func executableMissing(err error, path string) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	return pathErr.Op != "chdir" && pathErr.Path == path && errors.Is(pathErr.Err, fs.ErrNotExist)
}

// streamStderr feeds ffmpeg's stderr to the progress parser and log handler
func (e *Executor) streamStderr(reader io.Reader, parser *ProgressParser, tail *tailBuffer, opts *RunOptions) {
	scanner := newLineScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if progress := parser.ParseLine(line); progress != nil {
			if opts.OnProgress != nil {
				opts.OnProgress(progress)
			}
		} else {
			tail.Add(line)
			e.logger.Debug().Str("stream", "stderr").Msg(line)
		}

		if opts.OnLog != nil {
			opts.OnLog(line)
		}
	}

	// Keep draining so ffmpeg never blocks on a full pipe
	_, _ = io.Copy(io.Discard, reader)
}

// streamStdout forwards ffmpeg's stdout to the log handler
func (e *Executor) streamStdout(reader io.Reader, opts *RunOptions) {
	scanner := newLineScanner(reader)

	for scanner.Scan() {
		if opts.OnLog != nil {
			opts.OnLog(scanner.Text())
		}
	}

	_, _ = io.Copy(io.Discard, reader)
}

// newLineScanner splits on \n and on the bare \r ffmpeg uses for status updates
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	return scanner
}

// tailBuffer keeps the last n lines written to it
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{max: n}
}

func (t *tailBuffer) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.Join(t.lines, "\n")
}
