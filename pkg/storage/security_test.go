package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		// Localhost
		{"127.0.0.1", true},
		{"127.0.0.2", true},
		{"::1", true},
		// Private networks
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"fd12:3456::1", true},
		// Link-local (cloud metadata)
		{"169.254.169.254", true},
		{"fe80::1", true},
		// Public IPs (not blocked)
		{"8.8.8.8", false},
		{"172.32.0.1", false},
		{"2606:4700::1111", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.blocked, IsBlockedIP(tt.ip))
		})
	}
}

func TestValidateHTTPURI(t *testing.T) {
	tests := []struct {
		uri     string
		wantErr bool
		errMsg  string
	}{
		{"https://93.184.216.34/video.mp4", false, ""},
		{"http://8.8.8.8/file.mp4", false, ""},
		{"https://127.0.0.1/video.mp4", true, "localhost"},
		{"http://10.0.0.1/internal.mp4", true, "private network"},
		{"https://192.168.1.1/file.mp4", true, "private network"},
		{"http://169.254.169.254/metadata", true, "link-local"},
		{"ftp://8.8.8.8/file.mp4", true, "expected http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			err := ValidateHTTPURI(context.Background(), tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHTTPURI_BlockedIsMatchable(t *testing.T) {
	err := ValidateHTTPURI(context.Background(), "http://127.0.0.1:8080/clip.mp4")
	assert.ErrorIs(t, err, ErrBlockedAddress)
}
