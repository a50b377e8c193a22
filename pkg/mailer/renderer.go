package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sync"
	"text/template"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.md
var embeddedTemplates embed.FS

// RenderResult holds the rendered parts of a single message.
type RenderResult struct {
	Subject string
	HTML    string
	Text    string // processed markdown, before HTML conversion
}

// Renderer turns markdown templates into HTML and plain-text bodies.
// Parsed templates are cached; rendering is safe for concurrent use.
type Renderer struct {
	fs    fs.FS
	md    goldmark.Markdown
	cache map[string]*cachedTemplate
	mu    sync.RWMutex
}

type cachedTemplate struct {
	metadata map[string]any
	tmpl     *template.Template
}

// NewRenderer builds a renderer over the given filesystem. Pass nil to
// use the templates embedded in this package.
func NewRenderer(filesystem fs.FS) *Renderer {
	if filesystem == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			panic(fmt.Sprintf("mailer: embedded templates: %v", err))
		}
		filesystem = sub
	}
	return &Renderer{
		fs:    filesystem,
		md:    goldmark.New(),
		cache: make(map[string]*cachedTemplate),
	}
}

// Render executes the named template with data, converts the result to
// HTML, and resolves the subject from frontmatter. fallbackSubject is
// used when the template declares none.
func (r *Renderer) Render(name string, data any, fallbackSubject string) (*RenderResult, error) {
	cached, err := r.get(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := cached.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}

	var html bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("%w: convert %s: %v", ErrRenderFailed, name, err)
	}

	subject := fallbackSubject
	if s, ok := cached.metadata["subject"].(string); ok && s != "" {
		subject = s
	}

	return &RenderResult{
		Subject: subject,
		HTML:    html.String(),
		Text:    markdown.String(),
	}, nil
}

func (r *Renderer) get(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := template.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	cached = &cachedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.cache[name] = cached
	return cached, nil
}
