package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep evicts live games not used since cutoff. A run still in progress is
// closed as a defeat at its current level; for a daily game that uses up the
// day's attempt.
func (s *Server) Sweep(ctx context.Context, cutoff time.Time) int {
	gone := s.store.Prune(ctx, cutoff)
	for _, g := range gone {
		s.mu.Lock()
		sess := s.sessions[g.ID]
		delete(s.sessions, g.ID)
		s.mu.Unlock()
		if sess == nil {
			continue
		}
		prev, ok := g.Abandon()
		if !ok {
			continue
		}
		s.recordEnd(ctx, g.ID, sess, prev, g.State())
	}
	if len(gone) > 0 {
		log.Info().Int("evicted", len(gone)).Int("live", s.store.Len()).Msg("swept idle games")
	}
	return len(gone)
}

// Janitor calls Sweep every interval until ctx is done, evicting games idle
// for longer than idle.
func (s *Server) Janitor(ctx context.Context, every, idle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx, time.Now().Add(-idle))
		}
	}
}
