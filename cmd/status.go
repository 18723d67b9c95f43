package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/arxivsum/cli/internal/api"
	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/internal/settings"
	"github.com/arxivsum/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// StatusInput holds the arguments of a single poll.
type StatusInput struct {
	RequestID string
	Output    string
	Open      bool
}

// statusResult is what a single poll learned about a request.
type statusResult struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
}

const (
	stateDone    = "done"
	stateFailed  = "failed"
	stateUnknown = "unknown"
)

// StatusCmd polls a request once.
type StatusCmd struct {
	store      settings.Store
	view       popup.View
	httpClient *http.Client
}

func (s StatusCmd) Run(ctx context.Context, in StatusInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	creds, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !creds.Complete() {
		return popup.MissingCredentialsError{}
	}

	client := api.NewClient(creds.APIURL, creds.APIKey, api.WithHTTPClient(s.httpClient))
	result := statusResult{RequestID: in.RequestID}

	resp, err := client.Poll(ctx, in.RequestID)
	var pollErr *api.PollError
	switch {
	case errors.As(err, &pollErr):
		result.Status = stateFailed
		result.Message = err.Error()
	case err != nil:
		pterm.Error.Println("Could not reach the summarization endpoint.")
		return err
	case resp.Pending():
		result.Status = api.StatusPending
	case resp.Done():
		result.Status = stateDone
		result.Bytes = len(resp.HTML)
	default:
		result.Status = stateUnknown
		result.Message = resp.Status
	}

	if in.Output == "json" {
		if err := util.PrintPrettyJSON(result); err != nil {
			return err
		}
	} else {
		printRequestStatus(result)
	}

	if in.Open && result.Status == stateDone {
		return s.view.Open(resp.HTML)
	}
	return nil
}

var statusDisplay = map[string]struct {
	label string
	rgb   pterm.RGB
}{
	api.StatusPending: {label: "Pending", rgb: pterm.NewRGB(245, 158, 11)},
	stateDone:         {label: "Done", rgb: pterm.NewRGB(31, 163, 130)},
	stateFailed:       {label: "Failed", rgb: pterm.NewRGB(239, 68, 68)},
	stateUnknown:      {label: "Unknown", rgb: pterm.NewRGB(128, 128, 128)},
}

func getStatusDisplay(status string) (string, pterm.RGB) {
	if d, ok := statusDisplay[status]; ok {
		return d.label, d.rgb
	}
	return "Unknown", pterm.NewRGB(128, 128, 128)
}

func coloredDot(rgb pterm.RGB) string {
	return rgb.Sprint("●")
}

func printRequestStatus(r statusResult) {
	label, rgb := getStatusDisplay(r.Status)
	pterm.Println()
	pterm.Printf("  %s %s  %s\n", coloredDot(rgb), pterm.Bold.Sprint(r.RequestID), label)
	switch {
	case r.Message != "":
		pterm.Printf("    %s\n", r.Message)
	case r.Bytes > 0:
		pterm.Printf("    Summary ready (%s)\n", util.FormatBytes(int64(r.Bytes)))
	}
	pterm.Println()
}

var statusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Check a summarization request once",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")
	statusCmd.Flags().Bool("open", false, "Open the summary if it is ready")
	statusCmd.Flags().Bool("no-browser", false, "With --open, only save the summary")
	statusCmd.Flags().StringP("output-file", "O", "", "With --open, save the summary HTML to this file")
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := getSettingsStore(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	open, _ := cmd.Flags().GetBool("open")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	outputFile, _ := cmd.Flags().GetString("output-file")

	s := StatusCmd{store: store, view: newTerminalView(noBrowser, outputFile)}
	return s.Run(cmd.Context(), StatusInput{RequestID: args[0], Output: output, Open: open})
}
