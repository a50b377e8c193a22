package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// Template is a parsed template: YAML frontmatter metadata plus a
// markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits raw template content into frontmatter metadata
// and markdown body. Content without a leading "---" delimiter is
// treated as a body with empty metadata.
func ParseTemplate(content []byte) (*Template, error) {
	if !bytes.HasPrefix(content, frontmatterDelim) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, frontmatterDelim), "\r\n")
	end := bytes.Index(rest, frontmatterDelim)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	metadata := map[string]any{}
	if raw := bytes.TrimSpace(rest[:end]); len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(frontmatterDelim):]
	body = bytes.TrimLeft(body, "\r\n")

	return &Template{Metadata: metadata, Body: string(body)}, nil
}

// Subject returns the frontmatter subject, or fallback when absent.
func (t *Template) Subject(fallback string) string {
	if s, ok := t.Metadata["subject"].(string); ok && s != "" {
		return s
	}
	return fallback
}
