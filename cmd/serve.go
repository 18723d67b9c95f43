package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/arxivsum/cli/internal/jobs"
	"github.com/arxivsum/cli/internal/llm"
	"github.com/arxivsum/cli/internal/paper"
	"github.com/arxivsum/cli/internal/pipeline"
	"github.com/arxivsum/cli/internal/render"
	"github.com/arxivsum/cli/internal/server"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ServeInput holds the backend's configuration.
type ServeInput struct {
	Addr          string
	APIKey        string
	DBPath        string
	Workers       int
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	PromptFile    string
	TemplateFile  string
	Debug         bool
}

// ServeCmd runs the summarization backend.
type ServeCmd struct {
	// listen is swapped in tests to bind an ephemeral port.
	listen func(network, addr string) (net.Listener, error)
}

func (s ServeCmd) Run(ctx context.Context, in ServeInput) error {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	if in.Debug {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDebug)
	}

	model, err := llm.New(llm.Config{APIKey: in.OpenAIAPIKey, BaseURL: in.OpenAIBaseURL, Model: in.Model})
	if err != nil {
		return err
	}

	prompt, err := readOptionalFile(in.PromptFile)
	if err != nil {
		return fmt.Errorf("failed to read prompt: %w", err)
	}
	tmpl, err := readOptionalFile(in.TemplateFile)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	renderer, err := render.New(tmpl)
	if err != nil {
		return err
	}

	store, err := jobs.Open(in.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	p := &pipeline.Pipeline{
		Papers:   paper.NewFetcher(),
		Model:    model,
		Renderer: renderer,
		Prompt:   prompt,
		Logger:   logger,
	}
	srv := server.New(server.Config{APIKey: in.APIKey, Workers: in.Workers, Logger: logger}, store, p)

	listen := s.listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", in.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", in.Addr, err)
	}

	httpServer := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	if in.APIKey == "" {
		pterm.Warning.Println("No --api-key set: the endpoint accepts unauthenticated requests.")
	}
	logger.Info("listening", logger.Args("addr", ln.Addr().String(), "model", model.Name(), "workers", in.Workers, "db", in.DBPath))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.RunWorkers(gctx)
	})
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local summarization endpoint",
	Long: `Run a local summarization endpoint.

The endpoint speaks the same protocol the summarize command uses: POST
{"arxivUrl"} to create a request and POST {"requestId"} to poll it. Papers are
downloaded from arXiv, summarized with an OpenAI-compatible model and rendered
to HTML.`,
	Example: `  OPENAI_API_KEY=sk-... arxivsum serve --api-key secret
  arxivsum settings save --api-key secret --api-url http://localhost:8080/`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("api-key", "", "Key clients must send in x-api-key (env ARXIVSUM_SERVER_API_KEY)")
	serveCmd.Flags().String("db", "arxivsum.db", "SQLite database for jobs and results")
	serveCmd.Flags().Int("workers", 2, "Number of concurrent summarizations")
	serveCmd.Flags().String("openai-api-key", "", "OpenAI API key (env OPENAI_API_KEY)")
	serveCmd.Flags().String("openai-base-url", "", "Base URL of an OpenAI-compatible API")
	serveCmd.Flags().String("model", llm.DefaultModel, "Model used for summaries")
	serveCmd.Flags().String("prompt-file", "", "Prompt template file; {$file_content} is replaced by the paper text")
	serveCmd.Flags().String("template-file", "", "HTML page template file; {{CONTENT}} is replaced by the summary")
}

func runServe(cmd *cobra.Command, args []string) error {
	in := ServeInput{}
	in.Addr, _ = cmd.Flags().GetString("addr")
	in.APIKey, _ = cmd.Flags().GetString("api-key")
	in.DBPath, _ = cmd.Flags().GetString("db")
	in.Workers, _ = cmd.Flags().GetInt("workers")
	in.OpenAIAPIKey, _ = cmd.Flags().GetString("openai-api-key")
	in.OpenAIBaseURL, _ = cmd.Flags().GetString("openai-base-url")
	in.Model, _ = cmd.Flags().GetString("model")
	in.PromptFile, _ = cmd.Flags().GetString("prompt-file")
	in.TemplateFile, _ = cmd.Flags().GetString("template-file")
	in.Debug, _ = cmd.Flags().GetBool("debug")

	if in.APIKey == "" {
		in.APIKey = os.Getenv("ARXIVSUM_SERVER_API_KEY")
	}
	if in.OpenAIAPIKey == "" {
		in.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if in.Workers <= 0 {
		return fmt.Errorf("--workers must be positive")
	}

	s := ServeCmd{}
	return s.Run(cmd.Context(), in)
}
