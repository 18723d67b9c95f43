package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_States(t *testing.T) {
	tests := []struct {
		name  string
		reply func(http.ResponseWriter)
		want  string
	}{
		{"pending", pendingReply, "Pending"},
		{"done", htmlReply("<p>ok</p>"), "Done"},
		{"failed", statusReply(http.StatusInternalServerError), "Polling error: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupStdoutCapture(t)

			endpoint := &fakeEndpoint{replies: []func(http.ResponseWriter){tt.reply}}
			ts := endpoint.start(t)
			store := &memoryStore{s: settings.Settings{APIKey: "K", APIURL: ts.URL}}
			s := StatusCmd{store: store, view: newTerminalView(true, "")}

			require.NoError(t, s.Run(context.Background(), StatusInput{RequestID: "abc"}))
			assert.Contains(t, outBuf.String(), "abc")
			assert.Contains(t, outBuf.String(), tt.want)
			assert.Equal(t, "abc", endpoint.lastBody.RequestID)
		})
	}
}

func TestStatus_JSONOutput(t *testing.T) {
	setupStdoutCapture(t)

	endpoint := &fakeEndpoint{replies: []func(http.ResponseWriter){htmlReply("<p>ok</p>")}}
	ts := endpoint.start(t)
	store := &memoryStore{s: settings.Settings{APIKey: "K", APIURL: ts.URL}}
	s := StatusCmd{store: store, view: newTerminalView(true, "")}

	out := captureOSStdout(t, func() {
		require.NoError(t, s.Run(context.Background(), StatusInput{RequestID: "abc", Output: "json"}))
	})
	assert.JSONEq(t, `{"request_id":"abc","status":"done","bytes":9}`, out)
}

func TestStatus_OpenWritesSummaryWhenDone(t *testing.T) {
	setupStdoutCapture(t)

	endpoint := &fakeEndpoint{replies: []func(http.ResponseWriter){htmlReply("<p>ok</p>")}}
	ts := endpoint.start(t)
	store := &memoryStore{s: settings.Settings{APIKey: "K", APIURL: ts.URL}}

	out := filepath.Join(t.TempDir(), "nested", "summary.html")
	s := StatusCmd{store: store, view: newTerminalView(true, out)}

	require.NoError(t, s.Run(context.Background(), StatusInput{RequestID: "abc", Open: true}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(data))
}

func TestStatus_OpenIgnoredWhilePending(t *testing.T) {
	setupStdoutCapture(t)

	endpoint := &fakeEndpoint{}
	ts := endpoint.start(t)
	store := &memoryStore{s: settings.Settings{APIKey: "K", APIURL: ts.URL}}
	out := filepath.Join(t.TempDir(), "summary.html")
	s := StatusCmd{store: store, view: newTerminalView(true, out)}

	require.NoError(t, s.Run(context.Background(), StatusInput{RequestID: "abc", Open: true}))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestStatus_RequiresSettings(t *testing.T) {
	s := StatusCmd{store: &memoryStore{}, view: newTerminalView(true, "")}
	err := s.Run(context.Background(), StatusInput{RequestID: "abc"})
	var missing popup.MissingCredentialsError
	assert.True(t, errors.As(err, &missing))
}
