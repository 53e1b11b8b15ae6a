package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ManagerConfig configures a Manager
type ManagerConfig struct {
	// AllowPrivateNetworks disables the private address check on HTTP inputs
	AllowPrivateNetworks bool

	// S3 overrides the default AWS client settings
	S3 S3Config

	// TempRoot is where staging directories are created; empty means os.TempDir
	TempRoot string

	Logger zerolog.Logger

	// HTTPOptions are appended after the manager's own HTTP options
	HTTPOptions []HTTPOption
}

// Manager stages remote inputs onto local disk and publishes outputs
type Manager struct {
	cfg   ManagerConfig
	local *LocalStorage
	http  *HTTPStorage

	s3Once sync.Once
	s3     Storage
	s3Err  error
}

// NewManager creates a storage manager. The S3 client is created on first use.
func NewManager(cfg ManagerConfig) *Manager {
	httpOpts := []HTTPOption{WithHTTPLogger(cfg.Logger)}
	if !cfg.AllowPrivateNetworks {
		httpOpts = append(httpOpts, WithBlockedNetworks())
	}
	httpOpts = append(httpOpts, cfg.HTTPOptions...)

	return &Manager{
		cfg:   cfg,
		local: NewLocalStorage(),
		http:  NewHTTPStorage(httpOpts...),
	}
}

// WithS3 replaces the lazily created S3 backend
func (m *Manager) WithS3(s Storage) *Manager {
	m.s3Once.Do(func() {})
	m.s3, m.s3Err = s, nil
	return m
}

func (m *Manager) s3Storage(ctx context.Context) (Storage, error) {
	m.s3Once.Do(func() {
		m.s3, m.s3Err = NewS3Storage(ctx, m.cfg.S3)
	})
	return m.s3, m.s3Err
}

// backend returns the storage for a URI scheme
func (m *Manager) backend(ctx context.Context, scheme string) (Storage, error) {
	switch scheme {
	case "file":
		return m.local, nil
	case "http", "https":
		return m.http, nil
	case "s3":
		s, err := m.s3Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("S3 storage not initialized: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// CreateStagingDir creates the per-run working directory
func (m *Manager) CreateStagingDir(runID string) (string, error) {
	root := m.cfg.TempRoot
	if root == "" {
		root = os.TempDir()
	}

	dir := filepath.Join(root, "mediatools-"+runID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	return dir, nil
}

// Cleanup removes a staging directory
func (m *Manager) Cleanup(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.cfg.Logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove staging directory")
	}
}

// Stage returns a local path for the input reference, downloading remote
// objects into dir
func (m *Manager) Stage(ctx context.Context, ref, dir string) (string, error) {
	scheme, p, err := ParseURI(ref)
	if err != nil {
		return "", err
	}
	if !IsAllowedScheme(scheme) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	if scheme == "file" {
		exists, err := m.local.Exists(ctx, p)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return p, nil
	}

	if (scheme == "http" || scheme == "https") && !m.cfg.AllowPrivateNetworks {
		if err := ValidateHTTPURI(ctx, ref); err != nil {
			return "", err
		}
	}

	backend, err := m.backend(ctx, scheme)
	if err != nil {
		return "", err
	}

	if scheme == "s3" {
		exists, err := backend.Exists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
	}

	reader, err := backend.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", ref, err)
	}
	defer reader.Close()

	dest := filepath.Join(dir, stagedName(p))
	if err := m.local.Put(ctx, dest, reader); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", ref, err)
	}

	m.cfg.Logger.Debug().Str("ref", ref).Str("path", dest).Msg("staged input")
	return dest, nil
}

// OutputPath returns where ffmpeg should write an output destined for ref
func (m *Manager) OutputPath(ref, dir string) (string, error) {
	scheme, p, err := ParseURI(ref)
	if err != nil {
		return "", err
	}

	switch scheme {
	case "file":
		return p, nil
	case "s3":
		if _, _, err := parseS3URI(ref); err != nil {
			return "", err
		}
		return filepath.Join(dir, stagedName(p)), nil
	case "http", "https":
		return "", fmt.Errorf("%w: cannot write outputs to %s://", ErrReadOnly, scheme)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// Publish uploads a finished output to ref. Local destinations are
// written in place and need no publish step.
func (m *Manager) Publish(ctx context.Context, localPath, ref string) error {
	if !IsRemote(ref) {
		return nil
	}

	scheme, _, err := ParseURI(ref)
	if err != nil {
		return err
	}

	backend, err := m.backend(ctx, scheme)
	if err != nil {
		return err
	}

	reader, err := m.local.Get(ctx, localPath)
	if err != nil {
		return err
	}

	err = backend.Put(ctx, ref, reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to upload output to %s: %w", ref, err)
	}

	m.cfg.Logger.Info().Str("ref", ref).Msg("published output")
	return m.local.Delete(ctx, localPath)
}

// stagedName keeps the object's base name, prefixed to avoid collisions
func stagedName(p string) string {
	base := path.Base(p)
	if base == "." || base == "/" {
		base = "object"
	}
	return uuid.NewString()[:8] + "-" + base
}
