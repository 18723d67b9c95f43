package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/arxivsum/cli/internal/api"
	"github.com/arxivsum/cli/internal/settings"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
)

var outBuf bytes.Buffer

// setupStdoutCapture sends pterm output to outBuf without colors. The prefix
// printers keep the writer they were created with, so they are redirected
// one by one.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()

	printers := []*pterm.PrefixPrinter{&pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error, &pterm.Debug}
	writers := make([]io.Writer, len(printers))
	for i, p := range printers {
		writers[i] = p.Writer
		p.Writer = &outBuf
	}

	pterm.SetDefaultOutput(&outBuf)
	pterm.DisableStyling()
	t.Cleanup(func() {
		for i, p := range printers {
			p.Writer = writers[i]
		}
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableStyling()
	})
}

// captureOSStdout collects what is written to os.Stdout while fn runs.
func captureOSStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

type memoryStore struct {
	mu sync.Mutex
	s  settings.Settings
}

func (m *memoryStore) Load(ctx context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memoryStore) Save(ctx context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

// fakeEndpoint serves the create/poll protocol with canned poll replies.
type fakeEndpoint struct {
	mu       sync.Mutex
	creates  int
	polls    int
	replies  []func(w http.ResponseWriter)
	lastKey  string
	lastBody api.Request
}

func (f *fakeEndpoint) start(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req api.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastKey = r.Header.Get(api.HeaderAPIKey)
		f.lastBody = req

		w.Header().Set("Content-Type", "application/json")
		if req.ArxivURL != "" {
			f.creates++
			_ = json.NewEncoder(w).Encode(api.CreateResponse{RequestID: "abc"})
			return
		}
		f.polls++
		if len(f.replies) == 0 {
			_ = json.NewEncoder(w).Encode(api.PollResponse{Status: api.StatusPending})
			return
		}
		reply := f.replies[0]
		f.replies = f.replies[1:]
		reply(w)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func pendingReply(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(api.PollResponse{Status: api.StatusPending})
}

func htmlReply(html string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(api.PollResponse{HTML: html})
	}
}

func statusReply(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "boom"})
	}
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
