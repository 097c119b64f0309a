package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"carsight/internal/llm"
)

var (
	// ErrBusy is returned when a Send is issued while another one is still
	// in flight. The session does not queue concurrent sends.
	ErrBusy = errors.New("chat: send already in progress")
	// ErrSessionClosed is returned for any Send after Close.
	ErrSessionClosed = errors.New("chat: session closed")
)

// FallbackReply replaces the assistant turn when the upstream call fails.
// The failure is absorbed so the session stays usable.
const FallbackReply = "Sorry, I ran into a problem answering that. Please ask again."

// Greeting is shown by clients when a session opens. It is display-only and
// never sent upstream as history.
const Greeting = "Hi! Ask me anything about this vehicle."

const consultantPersona = "You are an expert automotive consultant. " +
	"Answer questions about the vehicle under discussion with practical, honest advice. " +
	"Keep replies short and concrete."

type state int

const (
	stateReady state = iota
	stateAwaiting
	stateClosed
)

// Turn is one entry of the running conversation.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"timestamp"`
}

// Session is a long-lived multi-turn exchange with the upstream model,
// pre-seeded with a fixed consultant persona. At most one Send may be
// outstanding at a time; a second concurrent Send fails with ErrBusy.
type Session struct {
	llm   llm.Client
	model string

	mu      sync.Mutex
	state   state
	vehicle string
	history []Turn
	now     func() time.Time
}

// NewSession returns a session in the Ready state. The vehicle label seeds
// the persona so every turn carries the same context; it may be empty.
func NewSession(client llm.Client, model, vehicleLabel string) *Session {
	return &Session{
		llm:     client,
		model:   model,
		vehicle: strings.TrimSpace(vehicleLabel),
		now:     time.Now,
	}
}

// Send appends the user turn, calls upstream with the full running context
// and returns the assistant reply. Upstream failure is converted into
// FallbackReply; only lifecycle violations (busy, closed) return an error.
func (s *Session) Send(ctx context.Context, userText string) (string, error) {
	s.mu.Lock()
	switch s.state {
	case stateClosed:
		s.mu.Unlock()
		return "", ErrSessionClosed
	case stateAwaiting:
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.state = stateAwaiting
	s.history = append(s.history, Turn{Role: llm.RoleUser, Text: userText, At: s.now()})
	msgs := make([]llm.Message, 0, len(s.history))
	for _, t := range s.history {
		msgs = append(msgs, llm.Message{Role: t.Role, Text: t.Text})
	}
	s.mu.Unlock()

	reply := FallbackReply
	resp, err := s.llm.Generate(ctx, llm.Request{
		Model:    s.model,
		System:   s.persona(),
		Messages: msgs,
	})
	if err == nil && strings.TrimSpace(resp.Text) != "" {
		reply = strings.TrimSpace(resp.Text)
	}

	s.mu.Lock()
	if s.state == stateAwaiting {
		s.state = stateReady
		s.history = append(s.history, Turn{Role: llm.RoleModel, Text: reply, At: s.now()})
	}
	s.mu.Unlock()
	return reply, nil
}

// Close transitions to Closed. Idempotent; subsequent Send calls fail with
// ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = stateClosed
	s.mu.Unlock()
}

// History returns a snapshot of the conversation so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) persona() string {
	if s.vehicle == "" {
		return consultantPersona
	}
	return consultantPersona + " The vehicle under discussion is a " + s.vehicle + "."
}
