// Package update finds newer releases and how the running binary was installed.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ReleasesURL is the GitHub API endpoint for the latest release.
var ReleasesURL = "https://api.github.com/repos/arxivsum/cli/releases/latest"

// InstallMethod is how the binary got onto the machine.
type InstallMethod string

const (
	InstallMethodBrew    InstallMethod = "brew"
	InstallMethodGo      InstallMethod = "go"
	InstallMethodUnknown InstallMethod = "unknown"
)

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// FetchLatest returns the latest release tag and its page URL.
func FetchLatest(ctx context.Context) (tag, url string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var r release
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", "", fmt.Errorf("invalid release response: %w", err)
	}
	if r.TagName == "" {
		return "", "", fmt.Errorf("release has no tag")
	}
	return r.TagName, r.HTMLURL, nil
}

// IsNewerVersion reports whether latest is newer than current.
func IsNewerVersion(current, latest string) (bool, error) {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid latest version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}

type installMethodRule struct {
	method InstallMethod
	check  func(path string) bool
}

func installMethodRules() []installMethodRule {
	return []installMethodRule{
		{InstallMethodGo, pathMatchesGo},
		{InstallMethodBrew, pathMatchesHomebrew},
	}
}

// DetectInstallMethod inspects the executable's resolved path.
func DetectInstallMethod() (InstallMethod, string) {
	exe, err := os.Executable()
	if err != nil {
		return InstallMethodUnknown, ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	path := filepath.ToSlash(exe)
	for _, r := range installMethodRules() {
		if r.check(path) {
			return r.method, exe
		}
	}
	return InstallMethodUnknown, exe
}

// UpgradeCommand returns the shell command that upgrades a binary installed
// with method.
func UpgradeCommand(method InstallMethod) string {
	return suggestUpgradeCommandForMethod(method)
}

func suggestUpgradeCommandForMethod(method InstallMethod) string {
	switch method {
	case InstallMethodGo:
		return "go install github.com/arxivsum/cli@latest"
	default:
		return "brew upgrade arxivsum/tap/arxivsum"
	}
}

func pathMatchesGo(path string) bool {
	if gobin := os.Getenv("GOBIN"); gobin != "" && strings.HasPrefix(path, filepath.ToSlash(gobin)+"/") {
		return true
	}
	return strings.Contains(path, "/go/bin/")
}

func pathMatchesHomebrew(path string) bool {
	return strings.Contains(path, "/Cellar/") ||
		strings.HasPrefix(path, "/opt/homebrew/") ||
		strings.Contains(path, "/.linuxbrew/")
}
