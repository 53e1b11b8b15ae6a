package binpath

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExecutable creates an empty executable script at dir/name
func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	return path
}

func TestLoadEnvFrom(t *testing.T) {
	env, err := LoadEnvFrom(context.Background(), map[string]string{
		"MEDIATOOLS_FFMPEG": "/opt/ffmpeg",
		"APPDIR":            "/tmp/.mount_mt",
		"OWD":               "/home/user/videos",
	})
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg", env.FFmpeg)
	assert.Empty(t, env.FFprobe)
	assert.Equal(t, "/tmp/.mount_mt", env.AppDir)
	assert.Equal(t, "/home/user/videos", env.OriginalWD)
}

func TestResolver_Lookup(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		dir := t.TempDir()
		custom := writeExecutable(t, dir, "my-ffmpeg")
		writeExecutable(t, filepath.Join(dir, "app", "usr", "bin"), "ffmpeg")

		r := NewResolver(&Env{FFmpeg: custom, AppDir: filepath.Join(dir, "app")})
		path, err := r.Lookup("ffmpeg")
		require.NoError(t, err)
		assert.Equal(t, custom, path)
	})

	t.Run("missing override is an error", func(t *testing.T) {
		r := NewResolver(&Env{FFprobe: filepath.Join(t.TempDir(), "nope")})
		_, err := r.Lookup("ffprobe")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("appimage bundle", func(t *testing.T) {
		dir := t.TempDir()
		bundled := writeExecutable(t, filepath.Join(dir, "usr", "bin"), "ffmpeg")

		r := NewResolver(&Env{AppDir: dir}, WithExecutableDir(""), WithoutPath(), WithSearchDirs())
		path, err := r.Lookup("ffmpeg")
		require.NoError(t, err)
		assert.Equal(t, bundled, path)
	})

	t.Run("executable dir", func(t *testing.T) {
		dir := t.TempDir()
		beside := writeExecutable(t, dir, "ffprobe")

		r := NewResolver(nil, WithExecutableDir(dir), WithoutPath(), WithSearchDirs())
		path, err := r.Lookup("ffprobe")
		require.NoError(t, err)
		assert.Equal(t, beside, path)
	})

	t.Run("fallback dirs", func(t *testing.T) {
		dir := t.TempDir()
		fallback := writeExecutable(t, dir, "ffmpeg")

		r := NewResolver(nil, WithExecutableDir(""), WithoutPath(), WithSearchDirs(dir))
		path, err := r.Lookup("ffmpeg")
		require.NoError(t, err)
		assert.Equal(t, fallback, path)
	})

	t.Run("not found", func(t *testing.T) {
		r := NewResolver(nil, WithExecutableDir(""), WithoutPath(), WithSearchDirs(t.TempDir()))
		_, err := r.Lookup("ffmpeg")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestResolver_Abs(t *testing.T) {
	r := NewResolver(&Env{OriginalWD: "/home/user/videos"})

	assert.Equal(t, filepath.Join("/home/user/videos", "clip.mp4"), r.Abs("clip.mp4"))
	assert.Equal(t, "/abs/clip.mp4", r.Abs("/abs/clip.mp4"))
	assert.Empty(t, r.Abs(""))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "clip.mp4"), NewResolver(nil).Abs("clip.mp4"))
}
