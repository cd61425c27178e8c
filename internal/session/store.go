package session

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Persister is the durable-storage boundary. The store loads once at
// construction and snapshots after every mutation; it does not care what
// medium sits behind the interface.
type Persister interface {
	LoadSessions() ([]ChatSession, error)
	SaveSessions([]ChatSession) error
}

// Store keeps all chat sessions in memory, optionally mirrored through a
// Persister. All mutation goes through CreateSession/AppendMessage, each
// atomic per session.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*ChatSession
	order     []string // insertion order; display sorting is a read-time concern
	persister Persister
	now       func() time.Time
	newID     func() string
}

func NewStore(p Persister) (*Store, error) {
	s := &Store{
		sessions:  make(map[string]*ChatSession),
		persister: p,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if p != nil {
		loaded, err := p.LoadSessions()
		if err != nil {
			return nil, fmt.Errorf("load sessions: %w", err)
		}
		for i := range loaded {
			sess := loaded[i]
			s.sessions[sess.ID] = &sess
			s.order = append(s.order, sess.ID)
		}
	}
	return s, nil
}

// CreateSession registers a new empty session with the default title.
func (s *Store) CreateSession() (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	sess := &ChatSession{
		ID:        s.newID(),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
		Title:     DefaultTitle,
	}
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	s.saveLocked()
	return sess.clone(), nil
}

func (s *Store) GetSession(id string) (*ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

// AppendMessage adds one message, bumps UpdatedAt and derives the title when
// this is the first user message on a still-untitled session. Sessions are
// append-only; messages are never edited or removed.
func (s *Store) AppendMessage(sessionID string, msg Message) (*ChatSession, error) {
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("message %s has empty content", msg.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	if msg.Role == RoleUser && sess.Title == DefaultTitle && !hasUserMessage(sess) {
		if text := firstText(msg); text != "" {
			sess.Title = DeriveTitle(text)
		}
	}

	sess.Messages = append(sess.Messages, msg)
	if ts := s.now().UnixMilli(); ts > sess.UpdatedAt {
		sess.UpdatedAt = ts
	}
	s.saveLocked()
	return sess.clone(), nil
}

// ListSessions returns copies ordered by UpdatedAt descending for display.
func (s *Store) ListSessions() []*ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ChatSession, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id].clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

func hasUserMessage(sess *ChatSession) bool {
	for _, m := range sess.Messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

// saveLocked snapshots through the persister. A failed snapshot is logged,
// never surfaced: the in-memory state is authoritative for the turn.
func (s *Store) saveLocked() {
	if s.persister == nil {
		return
	}
	snapshot := make([]ChatSession, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.sessions[id].clone())
	}
	if err := s.persister.SaveSessions(snapshot); err != nil {
		log.Printf("[session] snapshot failed: %v", err)
	}
}
