package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// NoopSender logs instead of delivering and remembers what it was given.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// SendBatch records msgs without delivering them.
func (s *NoopSender) SendBatch(_ context.Context, msgs []Message) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = fmt.Sprintf("noop-%d", len(s.sent)+i)
		slog.Debug("email_event", "event", "noop_send", "to", m.To, "subject", m.Subject)
	}
	s.sent = append(s.sent, msgs...)
	return ids, nil
}

// Sent returns a copy of every message recorded so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
