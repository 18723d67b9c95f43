// Package tab answers "which page is the user looking at?" for prefilling the
// paper URL. Sources are best-effort; an empty string means nothing usable.
package tab

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/samber/lo"
)

// Source yields the URL of the active page.
type Source interface {
	ActiveURL(ctx context.Context) (string, error)
}

// IsArxiv reports whether url points at arxiv.org.
func IsArxiv(url string) bool {
	return strings.Contains(url, "arxiv.org")
}

// Static always returns the same URL.
type Static string

func (s Static) ActiveURL(ctx context.Context) (string, error) {
	return string(s), nil
}

// Clipboard reads the system clipboard; copying the address bar is the
// terminal equivalent of the active tab.
type Clipboard struct{}

func (Clipboard) ActiveURL(ctx context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", nil
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, " \n\t") {
		return "", nil
	}
	return text, nil
}

// DefaultDevToolsEndpoint is Chrome's default --remote-debugging-port address.
const DefaultDevToolsEndpoint = "http://127.0.0.1:9222"

const devToolsTimeout = 3 * time.Second

// DevTools attaches to a Chrome instance started with --remote-debugging-port
// and reports the first page target, which is the most recently focused tab.
type DevTools struct {
	Endpoint string
	// ListTargets replaces the chromedp lookup, e.g. in tests.
	ListTargets func(ctx context.Context, endpoint string) ([]*target.Info, error)
}

func (d DevTools) ActiveURL(ctx context.Context) (string, error) {
	endpoint := strings.TrimRight(lo.Ternary(d.Endpoint == "", DefaultDevToolsEndpoint, d.Endpoint), "/")
	list := lo.Ternary(d.ListTargets == nil, remoteTargets, d.ListTargets)

	ctx, cancel := context.WithTimeout(ctx, devToolsTimeout)
	defer cancel()

	targets, err := list(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("devtools %s: %w", endpoint, err)
	}

	page, ok := lo.Find(targets, func(t *target.Info) bool { return t != nil && t.Type == "page" })
	if !ok {
		return "", nil
	}
	return page.URL, nil
}

// remoteTargets lists targets without opening a tab. Canceling the context
// only disconnects; the user's browser keeps running.
func remoteTargets(ctx context.Context, endpoint string) ([]*target.Info, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, endpoint)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	return chromedp.Targets(browserCtx)
}

// Chain returns the first non-empty URL from its sources. Errors from earlier
// sources are skipped; the last error is returned only if nothing matched.
type Chain []Source

func (c Chain) ActiveURL(ctx context.Context) (string, error) {
	var lastErr error
	for _, src := range c {
		u, err := src.ActiveURL(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if u != "" {
			return u, nil
		}
	}
	return "", lastErr
}
