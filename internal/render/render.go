// Package render turns model-written markdown into the HTML page returned to clients.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ContentPlaceholder is replaced by the rendered markdown in a page template.
const ContentPlaceholder = "{{CONTENT}}"

//go:embed template.html
var defaultTemplate string

// Renderer converts markdown to a full HTML document.
type Renderer struct {
	md       goldmark.Markdown
	template string
}

// New returns a Renderer using tmpl as the page template; an empty tmpl uses
// the built-in page.
func New(tmpl string) (*Renderer, error) {
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	if !strings.Contains(tmpl, ContentPlaceholder) {
		return nil, fmt.Errorf("template is missing %s", ContentPlaceholder)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
	return &Renderer{md: md, template: tmpl}, nil
}

// Fragment renders markdown to an HTML fragment.
func (r *Renderer) Fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Page renders markdown into the page template.
func (r *Renderer) Page(markdown string) (string, error) {
	fragment, err := r.Fragment(markdown)
	if err != nil {
		return "", err
	}
	return strings.Replace(r.template, ContentPlaceholder, fragment, 1), nil
}
