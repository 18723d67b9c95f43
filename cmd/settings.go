package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/internal/settings"
	"github.com/arxivsum/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SettingsShowInput holds flags for showing settings.
type SettingsShowInput struct {
	Output string
}

// SettingsSaveInput holds the values to save. Nil fields keep the stored value.
type SettingsSaveInput struct {
	APIKey *string
	APIURL *string
}

// SettingsCmd shows and edits the stored settings.
type SettingsCmd struct {
	store      settings.Store
	controller *popup.Controller
	prompter   Prompter
}

func (s SettingsCmd) Show(ctx context.Context, in SettingsShowInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	current, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if in.Output == "json" {
		current.APIKey = maskedOrEmpty(current.APIKey)
		return util.PrintPrettyJSON(current)
	}

	rows := pterm.TableData{
		{"Property", "Value"},
		{"API key", util.MaskSecret(current.APIKey)},
		{"Endpoint", util.OrDash(current.APIURL)},
	}
	PrintTableNoPad(rows, true)

	if !current.Complete() {
		pterm.Warning.Println("Settings are incomplete. Run 'arxivsum settings save' to set them.")
	}
	return nil
}

func (s SettingsCmd) Save(ctx context.Context, in SettingsSaveInput) error {
	// Omitted values fall back to what is stored, never to environment overrides.
	stored := s.store
	if env, ok := stored.(settings.EnvStore); ok {
		stored = env.Store
	}
	current, err := stored.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	apiKey := current.APIKey
	if in.APIKey != nil {
		apiKey = strings.TrimSpace(*in.APIKey)
	} else if s.prompter != nil {
		v, err := s.prompter.Text("API key", current.APIKey, true)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			apiKey = v
		}
	}

	apiURL := current.APIURL
	if in.APIURL != nil {
		apiURL = strings.TrimSpace(*in.APIURL)
	} else if s.prompter != nil {
		v, err := s.prompter.Text("API endpoint", current.APIURL, false)
		if err != nil {
			return err
		}
		apiURL = strings.TrimSpace(v)
	}

	return s.controller.SaveSettings(ctx, apiKey, apiURL)
}

func maskedOrEmpty(secret string) string {
	if secret == "" {
		return ""
	}
	return util.MaskSecret(secret)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the stored API key and endpoint",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the API key and endpoint",
	Long: `Save the API key and endpoint.

Values not given as flags are prompted for. An empty API key clears it.`,
	Example: `  arxivsum settings save --api-key sk-... --api-url https://example.com/summarize`,
	Args:    cobra.NoArgs,
	RunE:    runSettingsSave,
}

func init() {
	settingsCmd.Flags().StringP("output", "o", "", "Output format: json for raw settings")

	settingsSaveCmd.Flags().String("api-key", "", "API key sent in the x-api-key header")
	settingsSaveCmd.Flags().String("api-url", "", "Summarization endpoint URL")

	settingsCmd.AddCommand(settingsSaveCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	store, err := getSettingsStore(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	s := SettingsCmd{store: store}
	return s.Show(cmd.Context(), SettingsShowInput{Output: output})
}

func runSettingsSave(cmd *cobra.Command, args []string) error {
	store, err := getSettingsStore(cmd)
	if err != nil {
		return err
	}

	var in SettingsSaveInput
	if cmd.Flags().Changed("api-key") {
		v, _ := cmd.Flags().GetString("api-key")
		in.APIKey = &v
	}
	if cmd.Flags().Changed("api-url") {
		v, _ := cmd.Flags().GetString("api-url")
		in.APIURL = &v
	}

	s := SettingsCmd{
		store:      store,
		controller: popup.New(store, nil, newTerminalView(true, "")),
		prompter:   ptermPrompter{},
	}
	return s.Save(cmd.Context(), in)
}
