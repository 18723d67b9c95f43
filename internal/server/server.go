// Package server implements the summarization endpoint the client talks to:
// one URL that creates jobs and answers polls, with a worker pool that runs
// the pipeline in the background.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arxivsum/cli/internal/api"
	"github.com/arxivsum/cli/internal/jobs"
	"github.com/arxivsum/cli/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// Store persists jobs.
type Store interface {
	Create(ctx context.Context, id, arxivURL string) error
	Complete(ctx context.Context, id, html, markdown string) error
	Fail(ctx context.Context, id string, cause error) error
	Get(ctx context.Context, id string) (*jobs.Job, error)
	Pending(ctx context.Context) ([]*jobs.Job, error)
}

// Runner produces the result for one job.
type Runner interface {
	Run(ctx context.Context, requestID, arxivURL string) (*pipeline.Result, error)
}

// Config holds server settings.
type Config struct {
	// APIKey, when set, must match the x-api-key header of every request.
	APIKey  string
	Workers int
	// QueueSize bounds jobs waiting for a worker.
	QueueSize int
	// JobTimeout bounds a single pipeline run.
	JobTimeout time.Duration
	Logger     *pterm.Logger
}

type task struct {
	id       string
	arxivURL string
}

// Server is the HTTP handler plus its workers.
type Server struct {
	cfg    Config
	store  Store
	runner Runner
	queue  chan task
	log    *pterm.Logger
	router chi.Router
	newID  func() string
}

func New(cfg Config, store Store, runner Runner) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = &pterm.DefaultLogger
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		runner: runner,
		queue:  make(chan task, cfg.QueueSize),
		log:    log,
		newID:  uuid.NewString,
	}

	r := chi.NewRouter()
	r.Use(s.cors)
	r.Options("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.With(s.requireKey).Post("/", s.handle)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RunWorkers drains the job queue until ctx is canceled. Jobs left pending by
// a previous run are queued again first.
func (s *Server) RunWorkers(ctx context.Context) error {
	pending, err := s.store.Pending(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if len(pending) > 0 {
		s.log.Info("resuming pending jobs", s.log.Args("count", len(pending)))
		g.Go(func() error {
			for _, job := range pending {
				select {
				case <-ctx.Done():
					return nil
				case s.queue <- task{id: job.ID, arxivURL: job.ArxivURL}:
				}
			}
			return nil
		})
	}
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case t := <-s.queue:
					s.process(ctx, t)
				}
			}
		})
	}
	return g.Wait()
}

func (s *Server) process(ctx context.Context, t task) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	started := time.Now()
	s.log.Info("job started", s.log.Args("request_id", t.id, "arxiv_url", t.arxivURL))

	res, err := s.runner.Run(ctx, t.id, t.arxivURL)
	if err != nil {
		s.log.Error("job failed", s.log.Args("request_id", t.id, "error", err))
		if ferr := s.store.Fail(context.WithoutCancel(ctx), t.id, err); ferr != nil {
			s.log.Error("could not record failure", s.log.Args("request_id", t.id, "error", ferr))
		}
		return
	}
	if err := s.store.Complete(context.WithoutCancel(ctx), t.id, res.HTML, res.Markdown); err != nil {
		s.log.Error("could not store result", s.log.Args("request_id", t.id, "error", err))
		return
	}
	s.log.Info("job done", s.log.Args("request_id", t.id, "duration", time.Since(started).Round(time.Millisecond)))
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req api.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch {
	case req.ArxivURL != "":
		s.create(w, r, req.ArxivURL)
	case req.RequestID != "":
		s.poll(w, r, req.RequestID)
	default:
		writeError(w, http.StatusBadRequest, "arxivUrl or requestId is required")
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, arxivURL string) {
	id := s.newID()
	if err := s.store.Create(r.Context(), id, arxivURL); err != nil {
		s.log.Error("could not create job", s.log.Args("error", err))
		writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}

	select {
	case s.queue <- task{id: id, arxivURL: arxivURL}:
	default:
		_ = s.store.Fail(r.Context(), id, errors.New("queue full"))
		writeError(w, http.StatusServiceUnavailable, "too many pending requests")
		return
	}

	s.log.Info("job queued", s.log.Args("request_id", id, "arxiv_url", arxivURL))
	writeJSON(w, http.StatusOK, api.CreateResponse{RequestID: id})
}

func (s *Server) poll(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown requestId")
		return
	}
	if err != nil {
		s.log.Error("could not read job", s.log.Args("request_id", id, "error", err))
		writeError(w, http.StatusInternalServerError, "could not read job")
		return
	}

	switch job.Status {
	case jobs.StatusDone:
		writeJSON(w, http.StatusOK, api.PollResponse{HTML: job.HTML})
	case jobs.StatusFailed:
		writeError(w, http.StatusInternalServerError, job.Error)
	default:
		writeJSON(w, http.StatusAccepted, api.PollResponse{Status: api.StatusPending})
	}
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey != "" {
			got := r.Header.Get(api.HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.APIKey)) != 1 {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// cors sets the headers a browser-based client needs to call the endpoint.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Message: message})
}
