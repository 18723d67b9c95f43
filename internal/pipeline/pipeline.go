// Package pipeline turns an arXiv URL into a rendered summary page.
package pipeline

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/arxivsum/cli/internal/paper"
	"github.com/pterm/pterm"
)

const (
	// MaxPaperChars is how much paper text reaches the prompt.
	MaxPaperChars = 50000
	// ContentToken is replaced by the paper text in the prompt template.
	ContentToken = "{$file_content}"
)

//go:embed prompt.txt
var defaultPrompt string

// TextSource yields the text of a paper.
type TextSource interface {
	Text(ctx context.Context, arxivURL string) (string, error)
}

// Model completes a prompt with markdown.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Renderer turns markdown into a full HTML page.
type Renderer interface {
	Page(markdown string) (string, error)
}

// Result is the output of one run.
type Result struct {
	HTML     string
	Markdown string
}

// Pipeline wires the steps together.
type Pipeline struct {
	Papers   TextSource
	Model    Model
	Renderer Renderer
	Prompt   string
	Logger   *pterm.Logger
}

// Run fetches the paper, summarizes it and renders the page.
func (p *Pipeline) Run(ctx context.Context, requestID, arxivURL string) (*Result, error) {
	logger := p.logger()

	text, err := p.Papers.Text(ctx, arxivURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read paper: %w", err)
	}
	truncated := paper.Truncate(text, MaxPaperChars)
	logger.Debug("paper text extracted", logger.Args(
		"request_id", requestID,
		"original_length", len([]rune(text)),
		"truncated_length", len([]rune(truncated)),
	))

	markdown, err := p.Model.Complete(ctx, BuildPrompt(p.Prompt, truncated))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}
	markdown += fmt.Sprintf("\n\n[View original paper](%s)", arxivURL)

	html, err := p.Renderer.Page(markdown)
	if err != nil {
		return nil, err
	}
	return &Result{HTML: html, Markdown: markdown}, nil
}

func (p *Pipeline) logger() *pterm.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return &pterm.DefaultLogger
}

// BuildPrompt substitutes text into tmpl; an empty tmpl uses the built-in prompt.
func BuildPrompt(tmpl, text string) string {
	if tmpl == "" {
		tmpl = defaultPrompt
	}
	return strings.ReplaceAll(tmpl, ContentToken, text)
}
