package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vaultgate/pkg/storage"
)

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic", jpegPayload(64), "image/jpeg"},
		{"png magic", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}, "image/png"},
		{"pdf magic", []byte("%PDF-1.7 something"), "application/pdf"},
		{"plain text", []byte("just some words"), "text/plain"},
		{"empty", nil, storage.MIMEOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, storage.DetectMIME(tt.data))
		})
	}
}
