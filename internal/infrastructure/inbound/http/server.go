package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/domain/extract"
	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/domain/trace"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
	"github.com/sophialabs/apiprobe/internal/infrastructure/usecases"
)

const maxBodySize = 10 << 20 // 10 MB

// PromptEngines renders prompt previews and lists the available engines.
type PromptEngines interface {
	ports.PromptRenderer
	Engines() []string
	DefaultEngine() string
}

// Server is the HTTP API of apiprobe.
type Server struct {
	router    *chi.Mux
	testAPI   *usecases.TestAPIUseCase
	run       *usecases.RunConfigUseCase
	batch     *usecases.BatchRunUseCase
	configs   *usecases.ManageConfigsUseCase
	datalists *usecases.ManageDatalistsUseCase
	importUC  *usecases.ImportCollectionUseCase
	prompts   PromptEngines
	history   *trace.RingBuffer
	clock     ports.Clock
	logger    ports.Logger
}

// NewServer creates a new Server.
func NewServer(
	testAPI *usecases.TestAPIUseCase,
	run *usecases.RunConfigUseCase,
	batch *usecases.BatchRunUseCase,
	configs *usecases.ManageConfigsUseCase,
	datalists *usecases.ManageDatalistsUseCase,
	prompts PromptEngines,
	history *trace.RingBuffer,
	clock ports.Clock,
	logger ports.Logger,
) *Server {
	s := &Server{
		testAPI:   testAPI,
		run:       run,
		batch:     batch,
		configs:   configs,
		datalists: datalists,
		prompts:   prompts,
		history:   history,
		clock:     clock,
		logger:    logger,
	}
	s.router = s.buildRouter()
	return s
}

// SetCollectionImport enables POST /api/collections/reload. Without it the
// route answers 501.
func (s *Server) SetCollectionImport(uc *usecases.ImportCollectionUseCase) {
	s.importUC = uc
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/test-api", s.handleTestAPI)

		r.Route("/request-config", func(r chi.Router) {
			r.Get("/", s.handleListConfigs)
			r.Post("/", s.handleCreateConfig)
			r.Get("/{id}", s.handleGetConfig)
			r.Put("/{id}", s.handleUpdateConfig)
			r.Delete("/{id}", s.handleDeleteConfig)
			r.Post("/{id}/run", s.handleRunConfig)
			r.Post("/{id}/batch", s.handleBatchRun)
		})

		r.Route("/datalist", func(r chi.Router) {
			r.Get("/", s.handleListDatalists)
			r.Post("/", s.handleCreateDatalist)
			r.Post("/import", s.handleImportDatalist)
			r.Post("/columns", s.handleCSVColumns)
			r.Get("/{id}", s.handleGetDatalist)
			r.Delete("/{id}", s.handleDeleteDatalist)
		})

		r.Get("/engines", s.handleEngines)
		r.Post("/prompt/preview", s.handlePromptPreview)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{entryID}", s.handleHistoryEntry)
		r.Post("/collections/reload", s.handleReloadCollections)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"time":   s.clock.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := trace.Query{Limit: 10}
	params := r.URL.Query()
	if n, err := strconv.Atoi(params.Get("last")); err == nil && n > 0 {
		q.Limit = n
	}
	if id, err := strconv.ParseInt(params.Get("config"), 10, 64); err == nil {
		q.ConfigID = id
	}
	q.FailedOnly = params.Get("failed") == "true"

	entries := s.history.Select(q)
	if entries == nil {
		entries = []trace.Entry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.history.Find(chi.URLParam(r, "entryID"))
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleReloadCollections(w http.ResponseWriter, r *http.Request) {
	if s.importUC == nil {
		writeJSONStatus(w, http.StatusNotImplemented, errorBody("No collections directory configured"))
		return
	}
	n, err := s.importUC.Execute(r.Context())
	if err != nil {
		s.logger.Error("collection reload failed", "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{
			"error":   "Collection reload failed",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, map[string]any{"success": true, "imported": n})
}

// readJSON decodes a capped request body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps use case errors onto status codes. Engine messages are
// passed through unchanged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		engineErr   *extract.Error
		upstreamErr *usecases.UpstreamError
		columnErr   *services.ColumnError
	)

	switch {
	case errors.As(err, &engineErr):
		writeJSONStatus(w, http.StatusBadRequest, errorBody(engineErr.Error()))
	case errors.As(err, &upstreamErr):
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to call API",
			"details": upstreamErr.Err.Error(),
		})
	case errors.Is(err, requestconfig.ErrNotFound), errors.Is(err, datalist.ErrNotFound):
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
	case errors.Is(err, requestconfig.ErrDuplicateName), errors.Is(err, datalist.ErrDuplicateName):
		writeJSONStatus(w, http.StatusConflict, errorBody(rootMessage(err)))
	case errors.Is(err, usecases.ErrInvalidRequest):
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
	case errors.Is(err, services.ErrEmptyColumn):
		writeJSONStatus(w, http.StatusBadRequest, errorBody(services.ErrEmptyColumn.Error()))
	case errors.As(err, &columnErr):
		writeJSONStatus(w, http.StatusBadRequest, errorBody(columnErr.Error()))
	case errors.Is(err, usecases.ErrMissingRoute),
		errors.Is(err, usecases.ErrUnknownVariable),
		errors.Is(err, usecases.ErrPromptRender),
		errors.Is(err, services.ErrNoHeader):
		writeJSONStatus(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, errorBody("Internal error"))
	}
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
