package storage

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"path"
	"slices"
	"strings"
)

// FileValidationError represents an upload validation failure.
type FileValidationError struct {
	Details map[string]any // Error-specific data
	Code    string         // Machine-readable code (e.g., "file_too_large")
	Message string         // Human-readable message
}

// Error implements the error interface.
func (e *FileValidationError) Error() string {
	return e.Message
}

// Error codes for FileValidationError.
const (
	ErrCodeExtensionNotAllowed = "extension_not_allowed"
	ErrCodeFileTooLarge        = "file_too_large"
	ErrCodeInvalidMIME         = "invalid_mime"
	ErrCodeInvalidFilename     = "invalid_filename"
)

// Validator gates uploads before any byte reaches the backend.
type Validator struct {
	allowedExts  map[string]struct{}
	allowedMIMEs []string
	maxBytes     int64
}

// NewValidator builds a Validator. Extensions are matched case-insensitively
// and must include the leading dot; MIME patterns may use trailing wildcards.
func NewValidator(maxBytes int64, extensions, mimeTypes []string) *Validator {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &Validator{
		allowedExts:  exts,
		allowedMIMEs: mimeTypes,
		maxBytes:     maxBytes,
	}
}

// ValidatedFile is an upload that passed every check. Content is positioned
// at the start and seekable, ready for a streamed put.
type ValidatedFile struct {
	Content     *bytes.Reader
	Name        string // sanitized file name
	ContentType string // sniffed, not declared
	Size        int64
}

// Validate runs the checks in fixed order against the declared name and
// payload: extension allow-list, size cap, magic-byte MIME sniffing, then
// filename sanitization. The whole payload is buffered — bounded by the size
// cap — because sniffing and the cap both need the bytes before streaming
// can begin. Returns a *FileValidationError naming the violated rule.
func (v *Validator) Validate(name string, r io.Reader) (*ValidatedFile, error) {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := v.allowedExts[ext]; !ok {
		return nil, &FileValidationError{
			Code:    ErrCodeExtensionNotAllowed,
			Message: fmt.Sprintf("extension %q is not allowed", ext),
			Details: map[string]any{
				"extension": ext,
				"allowed":   sortedExtensions(v.allowedExts),
			},
		}
	}

	// Read one byte past the cap so an oversized payload is detected without
	// buffering more than maxBytes+1.
	data, err := io.ReadAll(io.LimitReader(r, v.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}
	if int64(len(data)) > v.maxBytes {
		return nil, &FileValidationError{
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file exceeds limit of %d bytes", v.maxBytes),
			Details: map[string]any{
				"limit": v.maxBytes,
			},
		}
	}

	contentType := DetectMIME(data)
	if !matchesMIME(contentType, v.allowedMIMEs) {
		return nil, &FileValidationError{
			Code:    ErrCodeInvalidMIME,
			Message: fmt.Sprintf("file type %q is not allowed", contentType),
			Details: map[string]any{
				"type":    contentType,
				"allowed": v.allowedMIMEs,
			},
		}
	}

	safeName, err := SanitizeFilename(name)
	if err != nil {
		return nil, err
	}

	return &ValidatedFile{
		Content:     bytes.NewReader(data),
		Name:        safeName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// SanitizeFilename strips directory components from the client-declared name
// and keeps only alphanumerics plus a small safe punctuation set (. _ - and
// space). An empty result is rejected.
func SanitizeFilename(name string) (string, error) {
	// Take the last segment across both separator styles.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-', r == ' ':
			b.WriteRune(r)
		}
	}

	safe := b.String()
	if safe == "" || strings.Trim(safe, ". ") == "" {
		return "", &FileValidationError{
			Code:    ErrCodeInvalidFilename,
			Message: "file name is empty after sanitization",
			Details: map[string]any{"name": name},
		}
	}
	return safe, nil
}

// sortedExtensions renders the allow-list for error details.
func sortedExtensions(exts map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(exts))
}
