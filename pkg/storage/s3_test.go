package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantBucket  string
		wantKey     string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid S3 URI",
			uri:        "s3://my-bucket/path/to/file.mp4",
			wantBucket: "my-bucket",
			wantKey:    "path/to/file.mp4",
			wantErr:    false,
		},
		{
			name:       "S3 URI with single key",
			uri:        "s3://bucket/file.txt",
			wantBucket: "bucket",
			wantKey:    "file.txt",
			wantErr:    false,
		},
		{
			name:       "S3 URI with nested path",
			uri:        "s3://my-bucket/videos/2024/01/sample.mp4",
			wantBucket: "my-bucket",
			wantKey:    "videos/2024/01/sample.mp4",
			wantErr:    false,
		},
		{
			name:        "missing bucket",
			uri:         "s3:///path/to/file.mp4",
			wantErr:     true,
			errContains: "missing bucket name",
		},
		{
			name:        "missing key",
			uri:         "s3://my-bucket/",
			wantErr:     true,
			errContains: "missing object key",
		},
		{
			name:        "bucket only",
			uri:         "s3://my-bucket",
			wantErr:     true,
			errContains: "missing object key",
		},
		{
			name:        "wrong scheme",
			uri:         "https://bucket/file.txt",
			wantErr:     true,
			errContains: "S3 storage only supports s3://",
		},
		{
			name:        "empty URI",
			uri:         "",
			wantErr:     true,
			errContains: "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := parseS3URI(tt.uri)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantBucket, bucket)
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

func TestNewS3Storage(t *testing.T) {
	storage, err := NewS3Storage(context.Background(), S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)
	assert.NotNil(t, storage.client)

	opts := storage.client.Options()
	assert.Equal(t, "us-east-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)

	var _ Storage = storage
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NotFound{}))
	assert.True(t, isS3NotFound(fmt.Errorf("head: %w", &types.NoSuchKey{})))
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("connection reset")))
}
