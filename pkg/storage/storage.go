// Package storage moves command inputs and outputs between the local disk,
// HTTP servers and S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// AllowedSchemes is the whitelist of allowed URI schemes
var AllowedSchemes = []string{"file", "http", "https", "s3"}

var (
	// ErrEmptyURI is returned for an empty reference
	ErrEmptyURI = errors.New("URI cannot be empty")

	// ErrUnsupportedScheme is returned for schemes outside AllowedSchemes
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")

	// ErrNotFound is returned when the referenced object does not exist
	ErrNotFound = errors.New("object not found")

	// ErrReadOnly is returned when writing to a read-only backend
	ErrReadOnly = errors.New("storage is read-only")

	// ErrBlockedAddress is returned when an HTTP host resolves to a private network
	ErrBlockedAddress = errors.New("access denied")
)

// Storage is the interface for all storage backends
type Storage interface {
	// Get opens the object at uri for reading
	Get(ctx context.Context, uri string) (io.ReadCloser, error)

	// Put uploads data to the given URI
	Put(ctx context.Context, uri string, data io.Reader) error

	// Delete removes the object at uri
	Delete(ctx context.Context, uri string) error

	// Exists checks if an object exists at the given URI
	Exists(ctx context.Context, uri string) (bool, error)
}

// ParseURI parses a URI and returns scheme and path.
// References without "://" are plain local paths.
func ParseURI(uri string) (scheme string, path string, err error) {
	if uri == "" {
		return "", "", ErrEmptyURI
	}

	if !strings.Contains(uri, "://") {
		return "file", uri, nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid URI: %w", err)
	}

	// For file:// URIs, use the full path
	if parsed.Scheme == "file" {
		return parsed.Scheme, parsed.Path, nil
	}

	// For other URIs (s3://, https://, etc.), combine host and path
	path = parsed.Host
	if parsed.Path != "" {
		path = path + parsed.Path
	}

	return parsed.Scheme, path, nil
}

// IsAllowedScheme checks if a URI scheme is in the whitelist
func IsAllowedScheme(scheme string) bool {
	for _, allowed := range AllowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// IsRemote reports whether uri names something other than a local file
func IsRemote(uri string) bool {
	scheme, _, err := ParseURI(uri)
	return err == nil && scheme != "file"
}

func requireScheme(uri string, backend string, schemes ...string) (string, string, error) {
	scheme, path, err := ParseURI(uri)
	if err != nil {
		return "", "", err
	}
	for _, s := range schemes {
		if scheme == s {
			return scheme, path, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s storage only supports %s://, got %s://",
		ErrUnsupportedScheme, backend, strings.Join(schemes, ":// and "), scheme)
}
