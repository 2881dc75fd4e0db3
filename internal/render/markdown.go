// Package render converts note markdown into HTML for the preview pane.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Markdown renders CommonMark plus the GFM extensions (strikethrough, tables,
// task lists, autolinks). Output is untrusted unless Sanitize is on.
type Markdown struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	sanitize bool
}

// Option configures a Markdown renderer.
type Option func(*Markdown)

// WithSanitize runs rendered HTML through bluemonday's UGC policy.
func WithSanitize(on bool) Option {
	return func(m *Markdown) {
		m.sanitize = on
	}
}

// New returns a renderer. Sanitizing is on unless disabled with WithSanitize(false).
func New(opts ...Option) *Markdown {
	m := &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy:   bluemonday.UGCPolicy(),
		sanitize: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render converts markdown to HTML.
func (m *Markdown) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	if !m.sanitize {
		return buf.String(), nil
	}
	return m.policy.SanitizeReader(&buf).String(), nil
}
