package utils

import (
	"mime/multipart"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	ref := NewReference("dep")

	assert.Regexp(t, regexp.MustCompile(`^DEP-\d{8}-[0-9A-F]{8}$`), ref)

	// Two references never collide
	assert.NotEqual(t, ref, NewReference("dep"))
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  User@Example.COM ", "user@example.com", false},
		{"plain@domain.io", "plain@domain.io", false},
		{"no-at-sign", "", true},
		{"spaces in@mail.com", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeEmail(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "&lt;script&gt;", SanitizeInput("<script>"))
	assert.NotContains(t, SanitizeInput("bad\x00byte"), "\x00")
}

func TestIsValidImageFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"document.jpg", true},
		{"Photo.JPEG", true},
		{"scan.png", true},
		{"selfie.webp", true},
		{"report.pdf", false},
		{"archive.zip", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename}
			assert.Equal(t, tt.want, IsValidImageFile(header))
		})
	}
}

func TestValidKYCDocType(t *testing.T) {
	for _, dt := range []string{"id_front", "id_back", "selfie", "proof_of_address"} {
		assert.True(t, ValidKYCDocType(dt), dt)
	}
	assert.False(t, ValidKYCDocType("passport"))
	assert.False(t, ValidKYCDocType(""))
}

func TestDepositQR(t *testing.T) {
	uri, err := DepositQR("VoltBank", "0123456789", "DEP-20250101-ABCDEF12", 250.00)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Greater(t, len(uri), 100)
}
