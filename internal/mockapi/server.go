// Package mockapi is an in-memory implementation of the CDS pipeline API.
// It backs the client's end-to-end tests and the cds-mock-api command.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/abdesslem/cds/internal/domain"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 30 * time.Second
)

// Server serves the pipeline API over a Store.
type Server struct {
	Router *chi.Mux
	store  *Store
	logger *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a server with its routes registered.
func New(store *Store, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(requestTimeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "cds-mock-api")
	})

	s := &Server{Router: r, store: store, logger: logger}

	r.Route("/project/{key}", func(r chi.Router) {
		r.Get("/pipeline", s.handleListPipelines)
		r.Post("/pipeline", s.handleCreatePipeline)

		r.Post("/import/pipeline", s.handleImport)
		r.Put("/import/pipeline/{pip}", s.handleImport)
		r.Post("/preview/pipeline", s.handlePreview)
		r.Get("/export/pipeline/{pip}", s.handleExport)
		r.Get("/pull/pipeline/{pip}", s.handleExport)

		r.Route("/pipeline/{pip}", func(r chi.Router) {
			r.Get("/", s.handleGetPipeline)
			r.Put("/", s.handleUpdatePipeline)
			r.Delete("/", s.handleDeletePipeline)

			r.Get("/application", s.handleListApplications)
			r.Get("/audits", s.handleListAudits)
			r.Post("/rollback/{auditID}", s.handleRollback)

			r.Post("/stage", s.handleInsertStage)
			r.Post("/stage/move", s.handleMoveStage)
			r.Put("/stage/{stageID}", s.handleUpdateStage)
			r.Delete("/stage/{stageID}", s.handleDeleteStage)

			r.Post("/stage/{stageID}/job", s.handleAddJob)
			r.Put("/stage/{stageID}/job/{jobID}", s.handleUpdateJob)
			r.Delete("/stage/{stageID}/job/{jobID}", s.handleDeleteJob)

			r.Post("/parameter/{name}", s.handleAddParameter)
			r.Put("/parameter/{name}", s.handleUpdateParameter)
			r.Delete("/parameter/{name}", s.handleDeleteParameter)
		})
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Start listens on port and blocks until the server stops. It returns nil
// after a Shutdown.
func (s *Server) Start(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("starting server", slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var se *statusError
	if errors.As(err, &se) {
		status = se.code
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
	s.writeJSON(w, status, map[string]string{"message": err.Error()})
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errorf(http.StatusBadRequest, "invalid body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorf(http.StatusBadRequest, "invalid %s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

// readDefinition enforces the format negotiation of import and preview and
// parses the YAML body.
func readDefinition(r *http.Request) (domain.Pipeline, error) {
	if f := r.URL.Query().Get("format"); f != "yaml" {
		return domain.Pipeline{}, errorf(http.StatusBadRequest, "unsupported format %q", f)
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/x-yaml" {
		return domain.Pipeline{}, errorf(http.StatusUnsupportedMediaType, "unsupported content type %q", r.Header.Get("Content-Type"))
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.Pipeline{}, errorf(http.StatusBadRequest, "read body: %v", err)
	}
	pip, err := parseDefinition(body)
	if err != nil {
		return domain.Pipeline{}, errorf(http.StatusBadRequest, "%v", err)
	}
	return pip, nil
}

func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	pips, err := s.store.ListPipelines(chi.URLParam(r, "key"))
	s.respond(w, r, pips, err)
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	withUsage := q.Get("withApplications") == "true" || q.Get("withWorkflows") == "true" || q.Get("withEnvironments") == "true"

	pip, err := s.store.GetPipeline(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), withUsage)
	if err == nil && withUsage {
		if q.Get("withApplications") != "true" {
			pip.Usage.Applications = nil
		}
		if q.Get("withWorkflows") != "true" {
			pip.Usage.Workflows = nil
		}
		if q.Get("withEnvironments") != "true" {
			pip.Usage.Environments = nil
		}
	}
	s.respond(w, r, pip, err)
}

func (s *Server) handleCreatePipeline(w http.ResponseWriter, r *http.Request) {
	var pip domain.Pipeline
	if err := decodeJSON(r, &pip); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.store.CreatePipeline(chi.URLParam(r, "key"), pip)
	s.respond(w, r, out, err)
}

func (s *Server) handleUpdatePipeline(w http.ResponseWriter, r *http.Request) {
	var pip domain.Pipeline
	if err := decodeJSON(r, &pip); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.store.UpdatePipeline(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), pip)
	s.respond(w, r, out, err)
}

func (s *Server) handleDeletePipeline(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePipeline(chi.URLParam(r, "key"), chi.URLParam(r, "pip")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	pip, err := readDefinition(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	force := r.URL.Query().Get("forceUpdate") == "true"
	msgs, err := s.store.ImportPipeline(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), pip, force)
	s.respond(w, r, msgs, err)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	pip, err := readDefinition(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pip.ProjectKey = chi.URLParam(r, "key")
	for i := range pip.Stages {
		pip.Stages[i].BuildOrder = i + 1
	}
	s.writeJSON(w, http.StatusOK, pip)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if f := r.URL.Query().Get("format"); f != "" && f != "yaml" {
		s.writeError(w, r, errorf(http.StatusBadRequest, "unsupported format %q", f))
		return
	}

	pip, err := s.store.GetPipeline(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var perms map[string]string
	if r.URL.Query().Get("withPermissions") == "true" {
		perms = map[string]string{"shared.infra": "rwx"}
	}
	body, err := renderDefinition(*pip, perms)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("export: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListApplications(chi.URLParam(r, "key"), chi.URLParam(r, "pip"))
	s.respond(w, r, apps, err)
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	audits, err := s.store.ListAudits(chi.URLParam(r, "key"), chi.URLParam(r, "pip"))
	s.respond(w, r, audits, err)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	auditID, err := pathID(r, "auditID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.Rollback(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), auditID)
	s.respond(w, r, pip, err)
}
