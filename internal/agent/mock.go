package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentchat-backend/internal/content"
	"agentchat-backend/internal/notify"
	"agentchat-backend/internal/submit"
)

// ActionHandler produces the reply for one submitted action identifier.
type ActionHandler func(env *submit.Envelope) []content.Block

// Mock is the deterministic stand-in for a real agent backend. Free text is
// routed through an ordered keyword table, submissions through a registered
// action map; both produce canned content block sequences.
type Mock struct {
	delay    Delay
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string
	intn     func(n int) int

	rules   []keywordRule
	actions map[string]ActionHandler
	// fallback for unknown action identifiers; never nil
	defaultAction ActionHandler
}

// NewMock builds a responder with the default dispatch tables. A nil delay
// gets the production latency simulation; tests pass NoDelay().
func NewMock(notifier notify.Notifier, delay Delay) *Mock {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if delay == nil {
		delay = FixedDelay(500 * time.Millisecond)
	}
	m := &Mock{
		delay:    delay,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
		intn:     defaultIntn,
	}
	m.rules = defaultKeywordRules()
	m.actions = map[string]ActionHandler{
		"securityAction":  m.handleSecurityAction,
		"serviceSelected": m.handleServiceSelected,
		"featuresEnabled": m.handleFeaturesEnabled,
	}
	m.defaultAction = m.handleUnknownAction
	return m
}

// RegisterAction adds or replaces a handler in the dispatch table.
func (m *Mock) RegisterAction(action string, h ActionHandler) {
	m.actions[action] = h
}

func (m *Mock) SendMessage(ctx context.Context, req Request) (Response, error) {
	if err := m.delay(ctx); err != nil {
		return Response{}, err
	}

	var blocks []content.Block
	env, isSubmission, err := submit.TryDecode(req.InputText)
	switch {
	case isSubmission && err != nil:
		// The text is no longer human-readable, so it cannot fall back to
		// the plain-input path.
		m.notifier.Notify(notify.Error, "The submitted action could not be processed.")
		blocks = []content.Block{
			content.Text{Text: "Sorry, that action could not be processed. Please try again."},
		}
	case isSubmission:
		m.notifier.Notify(notify.Success, fmt.Sprintf("Action performed: %s", env.Action))
		blocks = m.dispatchAction(env)
	default:
		blocks = m.respondToPrompt(req.InputText)
	}

	completion, err := content.EncodeBlocks(blocks)
	if err != nil {
		return Response{}, fmt.Errorf("encode mock reply: %w", err)
	}
	return Response{
		Completion:       completion,
		SessionID:        req.SessionID,
		RequestID:        m.newID(),
		PromptTokens:     len(strings.Fields(req.InputText)),
		CompletionTokens: m.intn(100) + 50,
	}, nil
}

func (m *Mock) dispatchAction(env *submit.Envelope) []content.Block {
	if h, ok := m.actions[env.Action]; ok {
		return h(env)
	}
	return m.defaultAction(env)
}

func defaultIntn(n int) int { return rand.Intn(n) }

func (m *Mock) respondToPrompt(prompt string) []content.Block {
	lower := strings.ToLower(prompt)
	for _, rule := range m.rules {
		if rule.match(lower) {
			return rule.reply(prompt)
		}
	}
	return helpReply(prompt)
}
