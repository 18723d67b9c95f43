package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/internal/tab"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Prompter asks the user for input.
type Prompter interface {
	Text(label, defaultValue string, mask bool) (string, error)
	Confirm(label string, defaultValue bool) (bool, error)
}

type ptermPrompter struct{}

func (ptermPrompter) Text(label, defaultValue string, mask bool) (string, error) {
	input := pterm.DefaultInteractiveTextInput
	if mask {
		// A masked default would be echoed back in clear text.
		return input.WithMask("*").Show(label)
	}
	return input.WithDefaultValue(defaultValue).Show(label)
}

func (ptermPrompter) Confirm(label string, defaultValue bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(defaultValue).Show(label)
}

// PopupCmd runs the interactive popup.
type PopupCmd struct {
	controller *popup.Controller
	prompter   Prompter
}

// Run shows the panel, lets the user edit settings, asks for the paper URL
// and submits it.
func (p PopupCmd) Run(ctx context.Context) error {
	c := p.controller
	pterm.Println(renderPanel(c.Form(), c.SettingsVisible()))

	if !c.SettingsVisible() {
		edit, err := p.prompter.Confirm("Edit settings?", false)
		if err != nil {
			return err
		}
		if edit {
			c.ToggleSettings()
		}
	}

	if c.SettingsVisible() {
		form := c.Form()
		apiKey, err := p.prompter.Text("API key", form.APIKey, true)
		if err != nil {
			return err
		}
		if strings.TrimSpace(apiKey) == "" {
			apiKey = form.APIKey
		}
		apiURL, err := p.prompter.Text("API endpoint", form.APIURL, false)
		if err != nil {
			return err
		}
		if err := c.SaveSettings(ctx, strings.TrimSpace(apiKey), strings.TrimSpace(apiURL)); err != nil {
			return err
		}
	}

	arxivURL, err := p.prompter.Text("arXiv URL", c.Form().ArxivURL, false)
	if err != nil {
		return err
	}
	arxivURL = strings.TrimSpace(arxivURL)
	if arxivURL == "" {
		return errors.New("an arXiv URL is required")
	}

	if err := c.Submit(ctx, arxivURL); err != nil {
		return errNoSummary
	}
	return nil
}

func init() {
	addSubmitFlags(rootCmd.Flags())
}

// addSubmitFlags registers the flags shared by every command that submits.
func addSubmitFlags(fs *pflag.FlagSet) {
	fs.Bool("no-browser", false, "Don't open the summary in a browser")
	fs.StringP("output", "O", "", "Also save the summary HTML to this file")
	fs.String("devtools", "", "Chrome remote debugging address to read the active tab from (e.g. "+tab.DefaultDevToolsEndpoint+")")
	fs.Duration("poll-interval", popup.DefaultPollInterval, "Delay before each poll")
	fs.Int("max-attempts", popup.DefaultMaxAttempts, "Maximum number of polls")
	_ = fs.MarkHidden("poll-interval")
	_ = fs.MarkHidden("max-attempts")
}

// newController builds a popup controller from the submit flags.
func newController(cmd *cobra.Command) (*popup.Controller, error) {
	store, err := getSettingsStore(cmd)
	if err != nil {
		return nil, err
	}

	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	output, _ := cmd.Flags().GetString("output")
	devtools, _ := cmd.Flags().GetString("devtools")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")

	if maxAttempts <= 0 {
		return nil, fmt.Errorf("--max-attempts must be positive")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("--poll-interval must be positive")
	}

	return popup.New(store, activeTabSource(devtools), newTerminalView(noBrowser, output),
		popup.WithPollInterval(pollInterval),
		popup.WithMaxAttempts(maxAttempts),
	), nil
}

func activeTabSource(devtools string) tab.Source {
	if devtools != "" {
		return tab.Chain{tab.DevTools{Endpoint: devtools}, tab.Clipboard{}}
	}
	return tab.Clipboard{}
}

func runPopup(cmd *cobra.Command, args []string) error {
	c, err := newController(cmd)
	if err != nil {
		return err
	}
	if err := c.Load(cmd.Context()); err != nil {
		return err
	}
	p := PopupCmd{controller: c, prompter: ptermPrompter{}}
	return reported(p.Run(cmd.Context()))
}
