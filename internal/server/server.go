// Package server exposes the audit orchestrator over HTTP: REST endpoints
// for jobs, reports and history, a WebSocket stream for live job events,
// and the Swagger UI.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/miru/docs/swagger" // generated API docs
	"github.com/raysh454/miru/internal/app"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/render"
	"github.com/raysh454/miru/internal/tracker"
)

// Server is the HTTP + WebSocket API surface for Miru.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	if cfg.AppConfig.Tracker.StoragePath != "" {
		storagePath, err := expandPath(cfg.AppConfig.Tracker.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("expanding storage path: %w", err)
		}
		cfg.AppConfig.Tracker.StoragePath = storagePath
	}

	orch := app.NewOrchestrator(cfg.AppConfig, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/audits", s.optionsHandler("GET, POST"))
	r.Options("/audits/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/audits/{jobID}/report", s.optionsHandler("GET"))
	r.Options("/history", s.optionsHandler("GET"))
	r.Options("/history/diff", s.optionsHandler("GET"))
	r.Options("/ws/audits/{jobID}", s.optionsHandler("GET"))

	// Audit jobs
	r.Post("/audits", s.handleStartAudit)
	r.Get("/audits", s.handleListAudits)
	r.Get("/audits/{jobID}", s.handleGetAudit)
	r.Delete("/audits/{jobID}", s.handleCancelAudit)
	r.Get("/audits/{jobID}/report", s.handleAuditReport)

	// History
	r.Get("/history", s.handleListHistory)
	r.Get("/history/diff", s.handleDiffHistory)

	// WebSocket for live job events
	r.Get("/ws/audits/{jobID}", s.handleAuditWS)

	// API docs
	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		s.orchestrator.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// Audit jobs

// handleStartAudit starts a page or site audit job.
//
// @Summary Start an audit job
// @Description Audits a single page, or crawls same-origin pages from the seed when type is "site". The job runs in the background; poll its status or watch /ws/audits/{id}.
// @Tags audits
// @Accept json
// @Produce json
// @Param request body StartAuditRequest true "Audit target"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /audits [post]
func (s *Server) handleStartAudit(w http.ResponseWriter, r *http.Request) {
	var body StartAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding start audit body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	// The job outlives the request, so it must not inherit the request
	// context.
	var (
		job *app.Job
		err error
	)
	switch body.Type {
	case "", string(app.JobPage):
		job, err = s.orchestrator.StartPageAudit(context.Background(), body.URL)
	case string(app.JobSite):
		job, err = s.orchestrator.StartSiteAudit(context.Background(), body.URL)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown audit type %q", body.Type))
		return
	}
	if err != nil {
		s.logger.Warn("starting audit job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("started audit job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "type", Value: string(job.Type)}, logging.Field{Key: "url", Value: job.URL})
	writeJSON(w, http.StatusAccepted, job)
}

// handleListAudits lists all known audit jobs.
//
// @Summary List audit jobs
// @Tags audits
// @Produce json
// @Success 200 {array} app.Job
// @Router /audits [get]
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed audit jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetAudit returns one audit job by ID.
//
// @Summary Get an audit job
// @Tags audits
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /audits/{jobID} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting audit job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.logger.Info("got audit job", logging.Field{Key: "job_id", Value: job.ID})
	writeJSON(w, http.StatusOK, job)
}

// handleCancelAudit cancels a running audit job.
//
// @Summary Cancel an audit job
// @Tags audits
// @Param jobID path string true "Job ID"
// @Success 204
// @Router /audits/{jobID} [delete]
func (s *Server) handleCancelAudit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled audit job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleAuditReport renders the report of a finished page job.
//
// @Summary Get a rendered audit report
// @Description Renders the report of a finished page job. Site jobs store per-page reports in history instead.
// @Tags audits
// @Produce json
// @Param jobID path string true "Job ID"
// @Param format query string false "Report format" Enums(json, text, html)
// @Success 200 {object} report.Report
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /audits/{jobID}/report [get]
func (s *Server) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting audit report: job not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status == app.JobPending || job.Status == app.JobRunning {
		writeError(w, http.StatusConflict, "job has not finished")
		return
	}
	if job.Report == nil {
		writeError(w, http.StatusNotFound, "job produced no report")
		return
	}

	data, err := render.Render(job.Report, format)
	if err != nil {
		s.logger.Warn("rendering audit report", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("rendered audit report", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "format", Value: string(format)})
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// History

// handleListHistory lists committed audit runs, newest first.
//
// @Summary List audit history
// @Tags history
// @Produce json
// @Param url query string false "Only runs of this page"
// @Param limit query int false "Maximum number of runs"
// @Success 200 {array} tracker.Run
// @Failure 500 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	tr, err := s.orchestrator.Tracker()
	if err != nil {
		s.logger.Warn("listing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	runs, err := tr.ListRuns(r.Context(), url, limit)
	if err != nil {
		s.logger.Warn("listing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("listed history", logging.Field{Key: "url", Value: url}, logging.Field{Key: "count", Value: len(runs)})
	writeJSON(w, http.StatusOK, runs)
}

// handleDiffHistory diffs two runs of the same page.
//
// @Summary Diff two audit runs
// @Description Compares the base run against the head run of the same page and reports introduced and resolved findings.
// @Tags history
// @Produce json
// @Param base query string true "Base run ID"
// @Param head query string true "Head run ID"
// @Success 200 {object} tracker.RunDiff
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/diff [get]
func (s *Server) handleDiffHistory(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	head := r.URL.Query().Get("head")
	if base == "" || head == "" {
		writeError(w, http.StatusBadRequest, "missing base or head query parameter")
		return
	}

	tr, err := s.orchestrator.Tracker()
	if err != nil {
		s.logger.Warn("diffing runs", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	diff, err := tr.DiffRuns(r.Context(), base, head)
	if err != nil {
		s.logger.Warn("diffing runs", logging.Field{Key: "base", Value: base}, logging.Field{Key: "head", Value: head}, logging.Field{Key: "error", Value: err.Error()})
		switch {
		case errors.Is(err, tracker.ErrRunNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, tracker.ErrMismatchedRuns):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.logger.Info("diffed runs", logging.Field{Key: "base", Value: base}, logging.Field{Key: "head", Value: head})
	writeJSON(w, http.StatusOK, diff)
}

// WebSockets

// handleAuditWS streams the events of an audit job over a WebSocket.
//
// @Summary Watch an audit job
// @Description Upgrades to a WebSocket, sends the current job state, then streams job events until the job finishes, closing with the final job state.
// @Tags audits
// @Param jobID path string true "Job ID"
// @Success 101
// @Failure 404 {object} ErrorResponse
// @Router /ws/audits/{jobID} [get]
func (s *Server) handleAuditWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("watching audit job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	s.logger.Info("watching audit job", logging.Field{Key: "job_id", Value: jobID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// A watcher dropping does not cancel the job.
			return
		}
	}

	// The event stream closed, so the job reached a terminal status; send
	// the final state with results.
	if final := s.orchestrator.GetJob(jobID); final != nil {
		_ = conn.WriteJSON(final)
	}
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
