// Package binpath locates external executables (ffmpeg, ffprobe) so the
// tool works both from a regular install and from a self-contained bundle
// such as an AppImage.
package binpath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

// ErrNotFound is returned when an executable cannot be located
var ErrNotFound = errors.New("executable not found")

// Env holds the process environment relevant to executable lookup
type Env struct {
	// Explicit executable overrides
	FFmpeg  string `env:"MEDIATOOLS_FFMPEG"`
	FFprobe string `env:"MEDIATOOLS_FFPROBE"`

	// AppDir is the mount point of a running AppImage
	AppDir string `env:"APPDIR"`

	// OriginalWD is the directory the user launched an AppImage from; the
	// AppImage runtime changes the working directory before starting us
	OriginalWD string `env:"OWD"`
}

// LoadEnv reads Env from the process environment
func LoadEnv(ctx context.Context) (*Env, error) {
	var env Env
	if err := envconfig.Process(ctx, &env); err != nil {
		return nil, fmt.Errorf("binpath: %w", err)
	}
	return &env, nil
}

// LoadEnvFrom reads Env from a fixed set of variables
func LoadEnvFrom(ctx context.Context, vars map[string]string) (*Env, error) {
	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.MapLookuper(vars),
	}); err != nil {
		return nil, fmt.Errorf("binpath: %w", err)
	}
	return &env, nil
}

// defaultSearchDirs are tried after PATH
var defaultSearchDirs = []string{
	"/usr/local/bin",    // Homebrew on macOS
	"/opt/homebrew/bin", // Apple Silicon Homebrew
	"/usr/bin",          // Linux
}

// Resolver finds executables by name
type Resolver struct {
	overrides  map[string]string
	appDir     string
	exeDir     string
	workDir    string
	searchDirs []string
	usePath    bool
}

// Option is a functional option for Resolver
type Option func(*Resolver)

// WithOverride pins name to an explicit path or command
func WithOverride(name, path string) Option {
	return func(r *Resolver) {
		if path != "" {
			r.overrides[name] = path
		}
	}
}

// WithExecutableDir sets the directory searched as the bundle's own bin dir.
// An empty dir disables that step.
func WithExecutableDir(dir string) Option {
	return func(r *Resolver) {
		r.exeDir = dir
	}
}

// WithSearchDirs replaces the fallback directories
func WithSearchDirs(dirs ...string) Option {
	return func(r *Resolver) {
		r.searchDirs = dirs
	}
}

// WithoutPath disables the PATH lookup
func WithoutPath() Option {
	return func(r *Resolver) {
		r.usePath = false
	}
}

// NewResolver creates a resolver from env. A nil env behaves like an empty one.
func NewResolver(env *Env, opts ...Option) *Resolver {
	if env == nil {
		env = &Env{}
	}

	r := &Resolver{
		overrides:  make(map[string]string),
		appDir:     env.AppDir,
		workDir:    env.OriginalWD,
		searchDirs: defaultSearchDirs,
		usePath:    true,
	}
	if env.FFmpeg != "" {
		r.overrides["ffmpeg"] = env.FFmpeg
	}
	if env.FFprobe != "" {
		r.overrides["ffprobe"] = env.FFprobe
	}
	if exe, err := os.Executable(); err == nil {
		r.exeDir = filepath.Dir(exe)
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Lookup resolves name to an executable path. The order is: explicit
// override, the AppImage's usr/bin, the directory of the running binary,
// PATH, then the fallback directories. An override that does not resolve
// is an error rather than a reason to keep searching.
func (r *Resolver) Lookup(name string) (string, error) {
	if override, ok := r.overrides[name]; ok {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", fmt.Errorf("%w: %s (override %q)", ErrNotFound, name, override)
		}
		return path, nil
	}

	dirs := []string{}
	if r.appDir != "" {
		dirs = append(dirs, filepath.Join(r.appDir, "usr", "bin"))
	}
	if r.exeDir != "" {
		dirs = append(dirs, r.exeDir)
	}
	for _, dir := range dirs {
		if path, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return path, nil
		}
	}

	if r.usePath {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, dir := range r.searchDirs {
		if path, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Abs resolves a user supplied path against the directory the user
// launched the tool from
func (r *Resolver) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	base := r.workDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		base = wd
	}
	return filepath.Join(base, path)
}
