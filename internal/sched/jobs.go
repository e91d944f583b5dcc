package sched

import (
	"context"
	"log/slog"
	"time"

	"github.com/flemzord/compactd/internal/journal"
	"github.com/flemzord/compactd/internal/session"
)

// ReconnectJob retries the summarization backend while the session is in
// fallback mode, so a backend that comes up later is picked up without a
// restart.
type ReconnectJob struct {
	Session      *session.Session
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "* * * * *"
}

// Compile-time interface check.
var _ Job = (*ReconnectJob)(nil)

// Name implements Job.
func (j *ReconnectJob) Name() string { return "backend_reconnect" }

// Schedule implements Job.
func (j *ReconnectJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "* * * * *"
}

// Run re-attempts Connect when the session is in fallback mode.
func (j *ReconnectJob) Run(ctx context.Context) error {
	if j.Session.Mode() == session.ModeLive {
		return nil
	}
	j.Session.Connect(ctx)
	if j.Session.Mode() == session.ModeLive && j.Logger != nil {
		j.Logger.Info("sched: backend reconnected")
	}
	return nil
}

// JournalPruneJob deletes journal entries older than the retention period.
type JournalPruneJob struct {
	Journal      *journal.Journal
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"
}

// Compile-time interface check.
var _ Job = (*JournalPruneJob)(nil)

// Name implements Job.
func (j *JournalPruneJob) Name() string { return "journal_prune" }

// Schedule implements Job.
func (j *JournalPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run prunes entries older than Retention.
func (j *JournalPruneJob) Run(ctx context.Context) error {
	pruned, err := j.Journal.Prune(ctx, j.Retention)
	if err != nil {
		return err
	}
	if pruned > 0 && j.Logger != nil {
		j.Logger.Info("sched: pruned journal entries", "count", pruned)
	}
	return nil
}
