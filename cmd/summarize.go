package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/arxivsum/cli/internal/popup"
	"github.com/arxivsum/cli/internal/tab"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SummarizeInput holds the arguments of a one-shot submission.
type SummarizeInput struct {
	// ArxivURL is the paper to summarize; empty means the active page.
	ArxivURL string
}

// SummarizeCmd submits a paper without any prompts.
type SummarizeCmd struct {
	controller *popup.Controller
}

func (s SummarizeCmd) Run(ctx context.Context, in SummarizeInput) error {
	if err := s.controller.Load(ctx); err != nil {
		return err
	}

	arxivURL := strings.TrimSpace(in.ArxivURL)
	if arxivURL == "" {
		arxivURL = s.controller.Form().ArxivURL
	}
	if arxivURL == "" {
		return errors.New("no arXiv URL given and none found in the active tab or clipboard")
	}
	if !tab.IsArxiv(arxivURL) {
		pterm.Warning.Printf("%s does not look like an arXiv URL; submitting anyway\n", arxivURL)
	}

	pterm.Info.Printf("Summarizing %s\n", arxivURL)
	if err := s.controller.Submit(ctx, arxivURL); err != nil {
		return errNoSummary
	}
	return nil
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [arxiv-url]",
	Short: "Summarize a paper and open the result",
	Long: `Summarize a paper and open the result.

Without an argument the URL of the active browser tab is used (see --devtools),
falling back to an arXiv URL on the clipboard.`,
	Example: `  arxivsum summarize https://arxiv.org/abs/2408.07712
  arxivsum summarize --devtools http://127.0.0.1:9222
  arxivsum summarize https://arxiv.org/abs/2408.07712 --no-browser -O summary.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	addSubmitFlags(summarizeCmd.Flags())
}

func runSummarize(cmd *cobra.Command, args []string) error {
	c, err := newController(cmd)
	if err != nil {
		return err
	}
	var in SummarizeInput
	if len(args) > 0 {
		in.ArxivURL = args[0]
	}
	s := SummarizeCmd{controller: c}
	return reported(s.Run(cmd.Context(), in))
}
