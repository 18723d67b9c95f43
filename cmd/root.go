package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/arxivsum/cli/internal/settings"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Metadata describes the build.
type Metadata struct {
	Version string
	Commit  string
	Date    string
}

var metadata = Metadata{Version: "dev"}

// errNoSummary is returned after a failed submission whose details were
// already shown to the user.
var errNoSummary = errors.New("no summary was produced")

// exitCode is the process status for failures that were already reported.
var exitCode int

// reported turns errNoSummary into a non-zero exit code so fang does not print
// the failure a second time.
func reported(err error) error {
	if errors.Is(err, errNoSummary) {
		exitCode = 1
		return nil
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:   "arxivsum",
	Short: "Summarize arXiv papers with your summarization endpoint",
	Long: `Summarize arXiv papers with your summarization endpoint.

Run without a subcommand to open the interactive popup: it shows your settings,
prefills the paper URL from the active browser tab (or the clipboard), submits
it, waits for the summary and opens it in a new browser window.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runPopup,
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug messages")
	rootCmd.PersistentFlags().String("store", settings.BackendKeyring, "Where settings are kept (keyring, file)")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute(m Metadata) {
	metadata = m

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(m.Version), fang.WithCommit(m.Commit)); err != nil {
		stop()
		os.Exit(1)
	}
	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
}

// initConfig loads .env from the working directory and applies global flags.
func initConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		pterm.EnableDebugMessages()
	}
	return nil
}

func getSettingsStore(cmd *cobra.Command) (settings.Store, error) {
	backend, _ := cmd.Flags().GetString("store")
	return settings.Open(backend)
}
