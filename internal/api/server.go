// ABOUTME: HTTP API over the assistant engine, settings, and static content.
// ABOUTME: chi router with JSON handlers and a websocket feed of appended messages.

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"

	"github.com/2389/lehmate/internal/assistant"
	"github.com/2389/lehmate/internal/content"
	"github.com/2389/lehmate/internal/dedupe"
	"github.com/2389/lehmate/internal/settings"
	"github.com/2389/lehmate/internal/store"
)

// IdempotencyKeyHeader lets clients retry a submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// LaunchInfo is the outcome of the first-launch check made at startup.
type LaunchInfo struct {
	FirstLaunch bool           `json:"first_launch"`
	Platform    store.Platform `json:"platform"`
}

// Deps are the collaborators a Server needs. Dedupe may be nil.
type Deps struct {
	Engine      *assistant.Engine
	Broadcaster *assistant.Broadcaster
	Settings    *settings.Service
	Catalog     *content.Catalog
	Dedupe      *dedupe.Cache
	Launch      LaunchInfo
	Logger      *slog.Logger
}

// Server serves the lehmate HTTP API.
type Server struct {
	engine      *assistant.Engine
	broadcaster *assistant.Broadcaster
	settings    *settings.Service
	catalog     *content.Catalog
	dedupe      *dedupe.Cache
	launch      LaunchInfo
	markdown    goldmark.Markdown
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// New creates a Server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = content.Default()
	}
	return &Server{
		engine:      deps.Engine,
		broadcaster: deps.Broadcaster,
		settings:    deps.Settings,
		catalog:     catalog,
		dedupe:      deps.Dedupe,
		launch:      deps.Launch,
		markdown:    goldmark.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With("component", "api"),
	}
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/messages", s.handleListMessages)
		api.Post("/messages", s.handleSubmit)
		api.Delete("/messages/{id}/reply", s.handleCancelReply)
		api.Get("/suggestions", s.handleListSuggestions)
		api.Post("/suggestions/{index}", s.handleSubmitSuggestion)
		api.Get("/ws", s.handleWebSocket)
		api.Get("/profile", s.handleProfile)
		api.Put("/settings/{name}", s.handleUpdateSetting)
		api.Delete("/settings/{name}", s.handleResetSetting)
		api.Get("/launch", s.handleLaunch)
	})

	return r
}

// requestLogger logs each request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.launch)
}

// respondJSON writes payload as a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// respondError writes an {"error": message} response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
