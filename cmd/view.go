package cmd

import (
	"strings"
	"sync"

	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/pkg/util"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
)

// terminalView draws the popup in the terminal. The "new window" is the
// default browser opening the summary from a local file.
type terminalView struct {
	noBrowser bool
	output    string
	openFile  func(path string) error

	mu      sync.Mutex
	label   string
	spinner *pterm.SpinnerPrinter
}

func newTerminalView(noBrowser bool, output string) *terminalView {
	return &terminalView{
		noBrowser: noBrowser,
		output:    output,
		openFile:  browser.OpenFile,
	}
}

func (v *terminalView) SettingsVisible(visible bool) {
	if visible {
		pterm.Warning.Println("API key and endpoint are required. Set them with 'arxivsum settings save'.")
	}
}

func (v *terminalView) Status(text string) {
	if text != "" {
		pterm.Success.Println(text)
	}
}

func (v *terminalView) Trigger(enabled bool, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if enabled {
		v.stopSpinnerLocked()
		return
	}
	v.label = label
	spinner, err := pterm.DefaultSpinner.Start(label)
	if err != nil {
		pterm.Info.Println(label)
		return
	}
	v.spinner = spinner
}

func (v *terminalView) Elapsed(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.spinner == nil || text == "" {
		return
	}
	v.spinner.UpdateText(v.label + " " + text)
}

func (v *terminalView) Alert(message string) {
	v.mu.Lock()
	v.stopSpinnerLocked()
	v.mu.Unlock()

	pterm.Error.Println(message)
}

// Open writes html unmodified; whatever the configured endpoint returns is
// what the browser renders.
func (v *terminalView) Open(html string) error {
	v.mu.Lock()
	v.stopSpinnerLocked()
	v.mu.Unlock()

	path := v.output
	if path != "" {
		if err := util.WriteFile(path, []byte(html), 0o644); err != nil {
			return err
		}
	} else {
		tmp, err := util.WriteTempFile("arxivsum-*.html", []byte(html))
		if err != nil {
			return err
		}
		path = tmp
	}
	pterm.Success.Printf("Summary saved to %s (%s)\n", path, util.FormatBytes(int64(len(html))))

	if v.noBrowser {
		return nil
	}
	if err := v.openFile(path); err != nil {
		pterm.Warning.Printf("Could not open browser automatically: %v\n", err)
		return nil
	}
	pterm.Info.Println("(Opened in browser)")
	return nil
}

func (v *terminalView) stopSpinnerLocked() {
	if v.spinner != nil {
		_ = v.spinner.Stop()
		v.spinner = nil
	}
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#B4A7F5")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true)
	panelLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).Width(10)
)

// renderPanel draws the popup's fields; settings rows appear only while the
// settings panel is open.
func renderPanel(form popup.Form, settingsVisible bool) string {
	lines := []string{panelTitle.Render("arXiv Summarizer"), ""}
	lines = append(lines, panelLabel.Render("Paper")+util.OrDash(form.ArxivURL))
	if settingsVisible {
		lines = append(lines,
			"",
			panelLabel.Render("API key")+util.MaskSecret(form.APIKey),
			panelLabel.Render("Endpoint")+util.OrDash(form.APIURL),
		)
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
