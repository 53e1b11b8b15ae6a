package executor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/media-tools/pkg/binpath"
	"github.com/chicogong/media-tools/pkg/filtergraph"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg and returns an
// executor that runs it
func fakeFFmpeg(t *testing.T, body string, opts ...Option) *Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))

	resolver := binpath.NewResolver(nil, binpath.WithOverride("ffmpeg", path))
	return NewExecutor(append([]Option{WithResolver(resolver)}, opts...)...)
}

func scaledInvocation(t *testing.T, output string) *Invocation {
	t.Helper()
	inv, err := NewInvocation(filtergraph.NewStream(0, "in.mp4").Scale(640, 360).Output(output))
	require.NoError(t, err)
	return inv
}

func TestExecutor_RunPassesArguments(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "argv")
	output := filepath.Join(dir, "out.mp4")

	e := fakeFFmpeg(t, `for a in "$@"; do echo "$a"; done > `+argsFile+`
eval "touch \"\${$#}\""`)

	result, err := e.Run(context.Background(), scaledInvocation(t, output), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	argv := strings.Split(strings.TrimSpace(string(data)), "\n")

	assert.Equal(t, result.Args, argv)
	assert.Equal(t, output, argv[len(argv)-1])
	assert.Contains(t, argv, "[0]scale=640:360[r00]")
	assert.FileExists(t, output)
}

func TestExecutor_RunReportsProgress(t *testing.T) {
	e := fakeFFmpeg(t, `echo "Input #0, mov,mp4, from 'in.mp4':" >&2
printf 'frame=   25 fps=25 q=-1.0 size=     256kB time=00:00:05.00 bitrate= 419.4kbits/s speed=1.0x\r' >&2
printf 'frame=   50 fps=25 q=-1.0 size=     512kB time=00:00:10.00 bitrate= 419.4kbits/s speed=1.0x\n' >&2`)

	var updates []*Progress
	var logged []string
	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), &RunOptions{
		TotalDuration: 10 * time.Second,
		OnProgress:    func(p *Progress) { updates = append(updates, p) },
		OnLog:         func(line string) { logged = append(logged, line) },
	})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, 25, updates[0].Frame)
	assert.InDelta(t, 50.0, updates[0].Percent, 0.001)
	assert.InDelta(t, 100.0, updates[1].Percent, 0.001)
	assert.Len(t, logged, 3)
}

func TestExecutor_RunExitError(t *testing.T) {
	e := fakeFFmpeg(t, `echo "in.mp4: No such file or directory" >&2
exit 3`)

	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), nil)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "in.mp4: No such file or directory", exitErr.Stderr)
	assert.Contains(t, exitErr.Error(), "status 3")
}

func TestExecutor_RunStderrTail(t *testing.T) {
	e := fakeFFmpeg(t, `for i in 1 2 3 4 5; do echo "line $i" >&2; done
exit 1`, WithStderrTail(2))

	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), nil)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "line 4\nline 5", exitErr.Stderr)
}

func TestExecutor_RunTimeout(t *testing.T) {
	e := fakeFFmpeg(t, `sleep 10`, WithTimeout(200*time.Millisecond))

	start := time.Now()
	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 8*time.Second)
}

func TestExecutor_RunCanceled(t *testing.T) {
	e := fakeFFmpeg(t, `sleep 10`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	_, err := e.Run(ctx, scaledInvocation(t, "out.mp4"), nil)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestExecutor_RunMissingExecutable(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mp4")
	resolver := binpath.NewResolver(nil,
		binpath.WithExecutableDir(""),
		binpath.WithoutPath(),
		binpath.WithSearchDirs(dir),
	)

	_, err := NewExecutor(WithResolver(resolver)).Run(context.Background(), scaledInvocation(t, output), nil)
	assert.ErrorIs(t, err, ErrExecutableNotFound)
	assert.NoFileExists(t, output)
}

func TestExecutor_RunMissingOutput(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	e := fakeFFmpeg(t, `touch `+marker)

	inv, err := NewInvocation(filtergraph.NewStream(0, "in.mp4").Scale(640, 360))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), inv, nil)
	assert.ErrorIs(t, err, ErrMissingOutput)
	assert.NoFileExists(t, marker)
}

func TestExecutor_RunNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec format errors are unix specific")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("\x00\x01 not a program\n"), 0755))
	resolver := binpath.NewResolver(nil, binpath.WithOverride("ffmpeg", path))

	_, err := NewExecutor(WithResolver(resolver)).Run(context.Background(), scaledInvocation(t, "out.mp4"), nil)
	require.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrExecutableNotFound)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "start", ioErr.Op)
}

func TestExecutor_RunMissingWorkDir(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	e := fakeFFmpeg(t, `touch `+marker)

	opts := &RunOptions{WorkDir: filepath.Join(t.TempDir(), "nope")}
	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), opts)
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrExecutableNotFound)
	assert.NoFileExists(t, marker)
}

func TestExecutor_RunAlreadyCanceled(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	e := fakeFFmpeg(t, `touch `+marker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, scaledInvocation(t, "out.mp4"), nil)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.NotErrorIs(t, err, ErrIO)
	assert.NoFileExists(t, marker)
}

func TestExecutor_RunSerializesLogCallback(t *testing.T) {
	e := fakeFFmpeg(t, `for i in $(seq 1 200); do echo "err $i" >&2; echo "out $i"; done`)

	// Appending without a lock is only safe if calls never overlap
	var lines []string
	opts := &RunOptions{OnLog: func(line string) { lines = append(lines, line) }}

	_, err := e.Run(context.Background(), scaledInvocation(t, "out.mp4"), opts)
	require.NoError(t, err)
	assert.Len(t, lines, 400)
}

func TestIOError_Is(t *testing.T) {
	err := &IOError{Op: "start", Err: os.ErrPermission}
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrPermission)
}
