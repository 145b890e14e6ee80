package error_notificator

import (
	"context"
	"sync"
	"time"
)

// Service forwards failures to the infra, dropping repeats of the same error
// text within the quiet window so a dead upstream doesn't flood the chat.
type Service struct {
	infra Notificator
	quiet time.Duration
	now   func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewService(infra Notificator, quiet time.Duration) *Service {
	return &Service{
		infra: infra,
		quiet: quiet,
		now:   time.Now,
		sent:  make(map[string]time.Time),
	}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	if err == nil {
		return nil
	}

	key := err.Error()
	s.mu.Lock()
	now := s.now()
	if last, ok := s.sent[key]; ok && s.quiet > 0 && now.Sub(last) < s.quiet {
		s.mu.Unlock()
		return nil
	}
	s.pruneLocked(now)
	s.sent[key] = now
	s.mu.Unlock()

	return s.infra.Notify(ctx, err, details)
}

// pruneLocked drops entries whose quiet window has passed.
func (s *Service) pruneLocked(now time.Time) {
	for key, last := range s.sent {
		if now.Sub(last) >= s.quiet {
			delete(s.sent, key)
		}
	}
}
