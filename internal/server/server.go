package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/medmole/medmole/internal/analysis"
	"github.com/medmole/medmole/internal/chat"
	"github.com/medmole/medmole/internal/handler"
	"github.com/medmole/medmole/internal/llm"
	"github.com/medmole/medmole/internal/middleware"
	"github.com/medmole/medmole/internal/predictor"
	"github.com/medmole/medmole/internal/store"
	"github.com/medmole/medmole/internal/suggest"
	ws "github.com/medmole/medmole/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	calendarH    *handler.CalendarEventHandler
	chatH        *handler.ChatHandler
	analysisH    *handler.AnalysisHandler
	adherenceH   *handler.AdherenceHandler
	settingsH    *handler.SettingsHandler
	predictorH   *handler.PredictorHandler
	sessionStore *store.SessionStore
	analysisSvc  *analysis.Service
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, provider llm.Provider, runner *predictor.Runner, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	eventStore := store.NewEventStore(db)
	settingsStore := store.NewSettingsStore(db)

	analysisSvc := analysis.NewService(eventStore, hub, logger)
	orchestrator := suggest.NewOrchestrator(eventStore, analysisSvc, logger.With("component", "suggest"))
	chatSvc := chat.NewService(provider, eventStore, orchestrator, runner, logger)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		calendarH:    handler.NewCalendarEventHandler(eventStore, hub, analysisSvc, logger.With("component", "calendar")),
		chatH:        handler.NewChatHandler(chatSvc),
		analysisH:    handler.NewAnalysisHandler(analysisSvc, logger.With("component", "analysis")),
		adherenceH:   handler.NewAdherenceHandler(eventStore, logger.With("component", "adherence")),
		settingsH:    handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		predictorH:   handler.NewPredictorHandler(runner, userStore, logger.With("component", "predictor")),
		sessionStore: sessionStore,
		analysisSvc:  analysisSvc,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// Analysis returns the analysis service for the background scheduler.
func (s *Server) Analysis() *analysis.Service {
	return s.analysisSvc
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/profile", s.authH.UpdateProfile)

	// Calendar event API routes
	mux.HandleFunc("POST /api/events", s.calendarH.Create)
	mux.HandleFunc("GET /api/events", s.calendarH.List)
	mux.HandleFunc("GET /api/events/{id}", s.calendarH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.calendarH.Update)
	mux.HandleFunc("PUT /api/events/{id}/times", s.calendarH.UpdateTimes)
	mux.HandleFunc("POST /api/events/{id}/taken", s.calendarH.SetTaken)
	mux.HandleFunc("DELETE /api/events/{id}", s.calendarH.Delete)

	// Assistant and analysis
	mux.HandleFunc("POST /api/chat", s.chatH.Send)
	mux.HandleFunc("GET /api/analysis", s.analysisH.Get)
	mux.HandleFunc("POST /api/analysis/refresh", s.analysisH.Refresh)
	mux.HandleFunc("GET /api/medications/adherence", s.adherenceH.Get)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.GetAll)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Set)

	// External ML predictor endpoints (historical paths)
	mux.HandleFunc("POST /physical-model/", s.predictorH.Physical)
	mux.HandleFunc("POST /mental-model/", s.predictorH.Mental)

	// Realtime sync
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
