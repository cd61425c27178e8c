package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"agentchat-backend/internal/agent"
	"agentchat-backend/internal/chat"
	"agentchat-backend/internal/config"
	"agentchat-backend/internal/notify"
	"agentchat-backend/internal/ratelimit"
	"agentchat-backend/internal/session"
	"agentchat-backend/internal/types"
)

type Server struct {
	router   *chi.Mux
	svc      *chat.Service
	limiter  *ratelimit.Limiter
	settings config.Settings
	cfg      config.Config
}

func NewServer(cfg config.Config) (*Server, error) {
	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		log.Printf("warning: %v; using default security settings", err)
		settings = config.DefaultSettings()
	}

	persister, err := newPersister(cfg, settings)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(persister)
	if err != nil {
		return nil, fmt.Errorf("initialize session store: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(settings.MaxRequestsPerMinute, settings.EnableRateLimiting)
	svc := chat.NewService(store, agent.WithPaymentFlow(backend), limiter, notify.LogNotifier{})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:   r,
		svc:      svc,
		limiter:  limiter,
		settings: settings,
		cfg:      cfg,
	}
	s.routes()
	return s, nil
}

func newPersister(cfg config.Config, settings config.Settings) (session.Persister, error) {
	if !settings.StoreSessionHistory {
		log.Println("session history storage disabled; sessions are memory-only")
		return nil, nil
	}
	switch {
	case cfg.DatabaseURL != "":
		p, err := session.NewPostgresPersister(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres persistence: %w", err)
		}
		log.Println("session persistence: postgres")
		return p, nil
	case cfg.SQLitePath != "":
		p, err := session.NewSQLitePersister(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite persistence: %w", err)
		}
		log.Println("session persistence: sqlite")
		return p, nil
	case cfg.SessionsFile != "":
		log.Println("session persistence: file")
		return session.NewFilePersister(cfg.SessionsFile), nil
	default:
		log.Println("warning: no persistence configured, sessions are memory-only")
		return nil, nil
	}
}

func newBackend(cfg config.Config) (agent.API, error) {
	switch cfg.Backend {
	case config.BackendRuntime:
		return agent.NewRuntimeClient(agent.RuntimeConfig{
			AgentID:      cfg.AgentID,
			AgentAliasID: cfg.AgentAliasID,
			Region:       cfg.Region,
			Token:        cfg.AgentToken,
		})
	case config.BackendOpenAI:
		return agent.NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return agent.NewMock(notify.LogNotifier{}, nil), nil
	}
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/sessions", s.handleCreateSession)
	s.router.Get("/api/sessions", s.handleListSessions)
	s.router.Get("/api/sessions/{id}", s.handleGetSession)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/api/ratelimit", s.handleRateLimit)
	s.router.Get("/api/settings", s.handleSettings)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.StartSession()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.ListSessions())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.svc.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeChatError(w, err)
		return
	}

	w.Header().Set("X-Session-Id", req.SessionID)
	s.writeJSON(w, http.StatusOK, types.ChatResponse{SessionID: req.SessionID, Session: sess})
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.limiter.Status())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings)
}

// writeChatError maps the turn error taxonomy onto HTTP statuses.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	var rateErr *chat.RateLimitError
	var transportErr *chat.TransportError
	switch {
	case errors.Is(err, chat.ErrInvalidSessionID),
		errors.Is(err, chat.ErrEmptyInput),
		errors.Is(err, chat.ErrInputTooLong):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rateErr):
		s.writeJSONError(w, http.StatusTooManyRequests, types.ErrorResponse{
			Error:          "Rate limit exceeded. Please try again later.",
			ResetInSeconds: rateErr.ResetInSeconds,
		})
	case errors.Is(err, chat.ErrTurnInFlight):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.As(err, &transportErr):
		s.writeError(w, http.StatusBadGateway, "the agent backend could not be reached")
	default:
		s.writeError(w, http.StatusInternalServerError, "failed to send message")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSONError(w, code, types.ErrorResponse{Error: msg})
}

func (s *Server) writeJSONError(w http.ResponseWriter, code int, resp types.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
