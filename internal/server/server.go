// Package server hosts quiz conversations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/metrics"
	"github.com/abhisek/codequiz/internal/session"
)

// Models is the subset of the model registry the server needs.
type Models interface {
	Get(key string) (llm.Provider, error)
	Default() string
	Keys() []string
}

// Deps are the server's collaborators.
type Deps struct {
	Controller *session.Controller
	Sessions   session.Store
	Models     Models
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	// StartQuestionID is used when a create request omits question_id.
	StartQuestionID int
}

// Server routes HTTP requests to the conversation controller.
type Server struct {
	deps   Deps
	logger *zap.Logger
	locks  sync.Map // session id -> *sync.Mutex
	newID  func() string
}

// New creates a Server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &Server{
		deps:   deps,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())
	r.Get("/models", s.handleModels)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/history", s.handleHistory)
			r.Post("/messages", s.handleMessage)
		})
	})

	return r
}

// instrument logs each request and counts it by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.deps.Metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"default": s.deps.Models.Default(),
		"models":  s.deps.Models.Keys(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.deps.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	JSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	if _, err := s.deps.Models.Get(req.Model); err != nil {
		s.fail(w, r, err)
		return
	}

	startID := s.deps.StartQuestionID
	if req.QuestionID != nil {
		if *req.QuestionID < 0 {
			Error(w, http.StatusBadRequest, "question_id must not be negative")
			return
		}
		startID = *req.QuestionID
	}

	st, err := s.deps.Controller.Start(r.Context(), session.New(s.newID(), startID, req.Model))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Sessions.Save(r.Context(), st); err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshActive(r.Context())

	view := newSessionView(st, s.deps.Models.Default())
	view.Replies = messagesView(st.Messages)
	JSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newSessionView(st, s.deps.Models.Default()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"id":       st.ID,
		"messages": messagesView(st.Messages),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.deps.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.locks.Delete(id)
	s.refreshActive(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	st, err := s.deps.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	next, err := s.deps.Controller.Turn(r.Context(), st, req.Message)
	s.deps.Metrics.ObserveTurn(time.Since(start))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Sessions.Save(r.Context(), next); err != nil {
		s.fail(w, r, err)
		return
	}

	view := newSessionView(next, s.deps.Models.Default())
	// Everything after the user's message is the assistant's reply.
	view.Replies = messagesView(next.Messages[len(st.Messages)+1:])
	JSON(w, http.StatusOK, view)
}

// lock returns the mutex serializing turns for one session.
func (s *Server) lock(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Server) refreshActive(ctx context.Context) {
	if ids, err := s.deps.Sessions.List(ctx); err == nil {
		s.deps.Metrics.ActiveSessions.Set(float64(len(ids)))
	}
}

// fail maps err to a response. Raw error text is logged, never returned.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	} else if !errors.Is(err, session.ErrSessionNotFound) {
		s.logger.Info("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	Error(w, status, msg)
}
