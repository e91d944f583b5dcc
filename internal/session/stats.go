package session

import (
	"context"
	"time"

	"github.com/flemzord/compactd/internal/journal"
)

// Stats is a point-in-time view of the session state. Connected and
// BackendMode are stable between Connect calls, so two consecutive reads
// without an intervening Connect are identical in those fields.
type Stats struct {
	Connected   bool            `json:"connected"`
	BackendMode Mode            `json:"backend_mode"`
	Totals      *journal.Totals `json:"totals,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Stats returns the current session state. When a journal is attached the
// aggregate operation totals are included; a journal read failure degrades
// to stats without totals rather than failing the call.
func (s *Session) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	stats := Stats{
		Connected:   s.connected,
		BackendMode: s.mode,
	}
	s.mu.Unlock()

	stats.Timestamp = time.Now().UTC()

	if s.journal != nil {
		totals, err := s.journal.TotalsFor(ctx)
		if err != nil {
			s.logger.Warn("journal totals failed", "error", err)
		} else {
			stats.Totals = &totals
		}
	}

	return stats
}
