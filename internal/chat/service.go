// Package chat drives one full conversation turn: validate, rate-limit,
// append the user message, invoke the responder, append the agent message.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agentchat-backend/internal/agent"
	"agentchat-backend/internal/content"
	"agentchat-backend/internal/notify"
	"agentchat-backend/internal/ratelimit"
	"agentchat-backend/internal/session"
)

const maxInputLength = 4000

const transportFailureText = "Sorry, I couldn't reach the agent just now. Your message has been kept; please try again."

// Service orchestrates turns against one store and one backend. All
// collaborators are injected; there is no package-level state.
type Service struct {
	store    *session.Store
	api      agent.API
	limiter  *ratelimit.Limiter
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(store *session.Store, api agent.API, limiter *ratelimit.Limiter, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		store:    store,
		api:      api,
		limiter:  limiter,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
		inflight: make(map[string]struct{}),
	}
}

func (s *Service) StartSession() (*session.ChatSession, error) { return s.store.CreateSession() }

func (s *Service) GetSession(id string) (*session.ChatSession, error) { return s.store.GetSession(id) }

func (s *Service) ListSessions() []*session.ChatSession { return s.store.ListSessions() }

// SendMessage runs one turn. Validation and rate-limit failures happen before
// any mutation; a backend failure leaves the user message in place and
// appends an agent-side error reply so history reflects what happened.
func (s *Service) SendMessage(ctx context.Context, sessionID, inputText string) (*session.ChatSession, error) {
	if err := s.validate(sessionID, inputText); err != nil {
		s.notifier.Notify(notify.Error, err.Error())
		return nil, err
	}

	// Re-checked on every attempt, never cached across turns.
	if s.limiter != nil && !s.limiter.Check() {
		st := s.limiter.Status()
		notify.RateLimitExceeded(s.notifier, st.ResetInSeconds)
		return nil, &RateLimitError{ResetInSeconds: st.ResetInSeconds}
	}

	if !s.acquire(sessionID) {
		return nil, ErrTurnInFlight
	}
	defer s.release(sessionID)

	userMsg := session.Message{
		ID:        s.newID(),
		Role:      session.RoleUser,
		Content:   []content.Block{content.Text{Text: inputText}},
		Timestamp: s.now().UnixMilli(),
	}
	if _, err := s.store.AppendMessage(sessionID, userMsg); err != nil {
		return nil, err
	}

	resp, err := s.api.SendMessage(ctx, agent.Request{InputText: inputText, SessionID: sessionID})
	if err != nil {
		log.Printf("[chat] backend failed for session %s: %v", sessionID, err)
		s.notifier.Notify(notify.Error, "Failed to send message")
		// Keep the timeline honest: the unanswered user message gets an
		// explicit agent-side failure reply.
		sess, appendErr := s.appendAgentReply(sessionID, []content.Block{content.Text{Text: transportFailureText}})
		if appendErr != nil {
			log.Printf("[chat] could not record failure reply for session %s: %v", sessionID, appendErr)
		}
		return sess, &TransportError{Err: err}
	}

	return s.appendAgentReply(sessionID, content.DecodeCompletion(resp.Completion))
}

func (s *Service) appendAgentReply(sessionID string, blocks []content.Block) (*session.ChatSession, error) {
	agentMsg := session.Message{
		ID:        s.newID(),
		Role:      session.RoleAgent,
		Content:   blocks,
		Timestamp: s.now().UnixMilli(),
	}
	sess, err := s.store.AppendMessage(sessionID, agentMsg)
	if err != nil {
		return nil, fmt.Errorf("append agent message: %w", err)
	}
	return sess, nil
}

func (s *Service) validate(sessionID, inputText string) error {
	if !isUUIDv4(sessionID) {
		return ErrInvalidSessionID
	}
	if strings.TrimSpace(inputText) == "" {
		return ErrEmptyInput
	}
	if len(inputText) > maxInputLength {
		return ErrInputTooLong
	}
	return nil
}

// acquire enforces at most one in-flight turn per session. The slot is freed
// by release on every turn exit, so a slow backend can never wedge a session.
func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

func isUUIDv4(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
