// Package paper downloads arXiv PDFs and extracts their plain text.
package paper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// MaxPDFBytes bounds a single download.
const MaxPDFBytes = 64 << 20

var whitespace = regexp.MustCompile(`\s+`)

// PDFURL maps an abstract page URL to its PDF, e.g.
// https://arxiv.org/abs/2408.07712 -> https://arxiv.org/pdf/2408.07712.pdf.
func PDFURL(arxivURL string) string {
	u := strings.TrimSpace(arxivURL)
	u = strings.Replace(u, "/abs/", "/pdf/", 1)
	if !strings.HasSuffix(u, ".pdf") {
		u += ".pdf"
	}
	return u
}

// Fetcher downloads papers.
type Fetcher struct {
	HTTPClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{HTTPClient: &http.Client{Timeout: 2 * time.Minute}}
}

// Text downloads the PDF behind arxivURL and returns its text with whitespace
// collapsed.
func (f *Fetcher) Text(ctx context.Context, arxivURL string) (string, error) {
	data, err := f.download(ctx, PDFURL(arxivURL))
	if err != nil {
		return "", err
	}
	return ExtractText(data)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("failed to download %s: %s (%s)", url, resp.Status, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if len(data) > MaxPDFBytes {
		return nil, fmt.Errorf("pdf at %s exceeds %d bytes", url, MaxPDFBytes)
	}
	return data, nil
}

// ExtractText returns the plain text of an in-memory PDF.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(builder.String(), " ")), nil
}

// Truncate cuts text to at most limit runes.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
