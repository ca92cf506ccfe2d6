package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/observability"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/aretw0/shipyard/pkg/session"
	"github.com/aretw0/shipyard/pkg/uploads"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadBytes bounds the whole body of one upload request.
const DefaultMaxUploadBytes = 16 << 20

// Server serves the generation API.
type Server struct {
	Sessions   *session.Manager
	Dispatcher *pipeline.Dispatcher

	logger         *slog.Logger
	maxUploadBytes int64
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxUploadBytes bounds the body size of one upload request, multipart
// framing included. Values below one keep the default.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(sessions *session.Manager, dispatcher *pipeline.Dispatcher, opts ...Option) http.Handler {
	s := &Server{
		Sessions:       sessions,
		Dispatcher:     dispatcher,
		logger:         logging.NewNop(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", observability.Handler())
	r.Get("/generators", s.ListGenerators)

	r.Post("/sessions", s.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", s.DeleteSession)
		r.Post("/uploads", s.AddUploads)
		r.Get("/uploads", s.ListUploads)
		r.Delete("/uploads", s.ClearUploads)
		r.Post("/generate/{kind}", s.Generate)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observe logs and counts every request by its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.RecordHTTPRequest(r.Method, route, status, elapsed)
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FieldInfo describes one configuration field of a generator.
type FieldInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

// GeneratorInfo describes a generator in GET /generators.
type GeneratorInfo struct {
	Kind        string      `json:"kind"`
	Filename    string      `json:"filename"`
	Description string      `json:"description,omitempty"`
	Fields      []FieldInfo `json:"fields"`
}

// ListGenerators handles GET /generators.
func (s *Server) ListGenerators(w http.ResponseWriter, r *http.Request) {
	defs := s.Dispatcher.Catalog().Definitions()
	out := make([]GeneratorInfo, 0, len(defs))
	for _, def := range defs {
		info := GeneratorInfo{
			Kind:        string(def.Kind),
			Filename:    def.Filename,
			Description: def.Description,
			Fields:      []FieldInfo{},
		}
		for _, name := range def.Fields() {
			info.Fields = append(info.Fields, FieldInfo{
				Name:    name,
				Type:    def.Schema[name].Name(),
				Default: def.Defaults[name],
			})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Start(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadResult reports which parts of an upload were kept.
type UploadResult struct {
	Accepted []string `json:"accepted"`
	Ignored  []string `json:"ignored"`
}

// AddUploads handles POST /sessions/{id}/uploads. The whole body is read
// before anything is stored; each part's own Content-Type decides whether it
// is kept. A body over the upload limit is rejected with 413 and stores
// nothing.
func (s *Server) AddUploads(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("expected multipart body: %v", err))
		return
	}

	var docs []uploads.Document
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.failBody(w, "malformed multipart body", err)
			return
		}
		name := part.FileName()
		if name == "" {
			part.Close()
			continue
		}

		content, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			s.failBody(w, "failed to read "+name, err)
			return
		}
		docs = append(docs, uploads.Document{
			Path:      name,
			MediaType: part.Header.Get("Content-Type"),
			Content:   string(content),
		})
	}

	accepted, ignored, err := sess.Uploads.AddAll(r.Context(), docs...)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResult{Accepted: accepted, Ignored: ignored})
}

// failBody reports a request body that could not be read.
func (s *Server) failBody(w http.ResponseWriter, msg string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msg, err))
}

// ListUploads handles GET /sessions/{id}/uploads.
func (s *Server) ListUploads(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	snap, err := sess.Uploads.Snapshot(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	paths := snap.Paths()
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"paths": paths})
}

// ClearUploads handles DELETE /sessions/{id}/uploads.
func (s *Server) ClearUploads(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sess.Uploads.Clear(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /sessions/{id}/generate/{kind}. The body is either
// JSON ({"include_baseline": bool, "fields": {...}}) or form values, where
// every value other than include_baseline is a field.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Kind = domain.GeneratorKind(chi.URLParam(r, "kind"))

	if _, err := s.Dispatcher.Generate(r.Context(), sess, req, delivery.NewResponseDeliverer(w)); err != nil {
		s.fail(w, err)
	}
}

func decodeRequest(r *http.Request) (pipeline.Request, error) {
	var req pipeline.Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form body: %w", err)
	}
	req.Fields = make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		if key == "include_baseline" {
			flag, err := schema.ParseFlag(values[0])
			if err != nil {
				return req, fmt.Errorf("include_baseline: %w", err)
			}
			req.IncludeBaseline = flag
			continue
		}
		req.Fields[key] = values[0]
	}
	return req, nil
}

// FieldError is one entry of a 422 response.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// fail maps an error to its status code and JSON body.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var invErr *domain.InvocationError
	var aggr *schema.AggregateError

	switch {
	case errors.As(err, &aggr):
		out := make([]FieldError, 0, len(aggr.Errors))
		for _, e := range aggr.Errors {
			var fe *schema.ValidationError
			if errors.As(e, &fe) {
				out = append(out, FieldError{Field: fe.Key, Reason: fe.Reason})
			} else {
				out = append(out, FieldError{Reason: e.Error()})
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": out})
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnknownGenerator):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    invErr.Message,
			"kind":     invErr.Kind,
			"panicked": invErr.Panicked,
		})
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
