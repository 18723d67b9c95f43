package cmd

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arxivsum/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_AnswersAndShutsDown(t *testing.T) {
	setupStdoutCapture(t)

	addrs := make(chan string, 1)
	s := ServeCmd{listen: func(network, addr string) (net.Listener, error) {
		ln, err := net.Listen(network, "127.0.0.1:0")
		if err == nil {
			addrs <- ln.Addr().String()
		}
		return ln, err
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, ServeInput{
			Addr:         ":0",
			APIKey:       "K",
			DBPath:       filepath.Join(t.TempDir(), "jobs.db"),
			Workers:      1,
			OpenAIAPIKey: "sk-test",
		})
	}()

	var addr string
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not start listening")
	}

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/", strings.NewReader(`{"requestId":"missing"}`))
	require.NoError(t, err)
	req.Header.Set(api.HeaderAPIKey, "K")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestServe_RequiresOpenAIKey(t *testing.T) {
	s := ServeCmd{}
	err := s.Run(context.Background(), ServeInput{Addr: "127.0.0.1:0", DBPath: ":memory:", Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestServe_RejectsTemplateWithoutPlaceholder(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "page.html")
	require.NoError(t, writeTestFile(tmpl, "<html></html>"))

	s := ServeCmd{}
	err := s.Run(context.Background(), ServeInput{DBPath: ":memory:", Workers: 1, OpenAIAPIKey: "sk-test", TemplateFile: tmpl})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{CONTENT}}")
}
