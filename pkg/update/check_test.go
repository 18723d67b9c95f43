package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestUpgradeCommandForMethod(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		expected string
	}{
		{InstallMethodBrew, "brew upgrade arxivsum/tap/arxivsum"},
		{InstallMethodGo, "go install github.com/arxivsum/cli@latest"},
		{InstallMethodUnknown, "brew upgrade arxivsum/tap/arxivsum"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestUpgradeCommandForMethod(tt.method))
		})
	}
}

func TestPathMatchesGo(t *testing.T) {
	t.Setenv("GOBIN", "/custom/bin")
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/go/bin/arxivsum", true},
		{"/custom/bin/arxivsum", true},
		{"/opt/homebrew/bin/arxivsum", false},
		{"/usr/local/bin/arxivsum", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesGo(tt.path))
		})
	}
}

func TestPathMatchesHomebrew(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/opt/homebrew/bin/arxivsum", true},
		{"/usr/local/Cellar/arxivsum/1.0/bin/arxivsum", true},
		{"/home/linuxbrew/.linuxbrew/Cellar/arxivsum/1.0/bin/arxivsum", true},
		{"/home/user/go/bin/arxivsum", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesHomebrew(tt.path))
		})
	}
}

func TestInstallMethodRulesPathPrecedence(t *testing.T) {
	t.Setenv("GOBIN", "")
	rules := installMethodRules()

	detect := func(path string) InstallMethod {
		for _, r := range rules {
			if r.check(path) {
				return r.method
			}
		}
		return InstallMethodUnknown
	}

	assert.Equal(t, InstallMethodGo, detect("/home/user/go/bin/arxivsum"))
	assert.Equal(t, InstallMethodBrew, detect("/opt/homebrew/bin/arxivsum"))
	assert.Equal(t, InstallMethodUnknown, detect("/usr/local/bin/arxivsum"))
}

func TestIsNewerVersion(t *testing.T) {
	newer, err := IsNewerVersion("v0.1.0", "v0.2.0")
	require.NoError(t, err)
	assert.True(t, newer)

	newer, err = IsNewerVersion("0.2.0", "v0.2.0")
	require.NoError(t, err)
	assert.False(t, newer)

	_, err = IsNewerVersion("dev", "v0.2.0")
	assert.Error(t, err)
}

func TestFetchLatest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v1.2.3","html_url":"https://github.com/arxivsum/cli/releases/tag/v1.2.3"}`))
	}))
	defer ts.Close()

	old := ReleasesURL
	ReleasesURL = ts.URL
	t.Cleanup(func() { ReleasesURL = old })

	tag, url, err := FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", tag)
	assert.Equal(t, "https://github.com/arxivsum/cli/releases/tag/v1.2.3", url)
}
