package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_GetPut(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "renders", "clip.mp4")
	payload := "ftypisom"

	storage := NewLocalStorage()
	ctx := context.Background()

	uri := "file://" + path
	err := storage.Put(ctx, uri, strings.NewReader(payload))
	require.NoError(t, err)

	assert.FileExists(t, path)

	// Plain paths address the same file
	reader, err := storage.Get(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, payload, string(content))
}

func TestLocalStorage_GetMissing(t *testing.T) {
	_, err := NewLocalStorage().Get(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_PutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLocalStorage().Put(ctx, filepath.Join(t.TempDir(), "out.bin"), strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStorage_WrongScheme(t *testing.T) {
	_, err := NewLocalStorage().Exists(context.Background(), "s3://bucket/key")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLocalStorage_Exists(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.mp4")
	require.NoError(t, os.WriteFile(input, []byte("test"), 0644))

	storage := NewLocalStorage()
	ctx := context.Background()

	exists, err := storage.Exists(ctx, "file://"+input)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = storage.Exists(ctx, filepath.Join(tmpDir, "missing.mp4"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "staged-out.mp4")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0644))

	storage := NewLocalStorage()
	ctx := context.Background()

	require.NoError(t, storage.Delete(ctx, "file://"+path))
	assert.NoFileExists(t, path)

	// Deleting twice is not an error
	assert.NoError(t, storage.Delete(ctx, path))
}
