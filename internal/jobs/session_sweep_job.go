package jobs

import (
	"time"

	"go.uber.org/zap"
)

// SessionSweepJobName is the name of the idle session eviction job
const SessionSweepJobName = "session_sweep"

// SessionSweeper drops sessions idle for longer than maxIdle and reports how many.
type SessionSweeper interface {
	Sweep(maxIdle time.Duration) int
}

// RegisterSessionSweepJob evicts idle wizard sessions on the given schedule.
func RegisterSessionSweepJob(scheduler *Scheduler, sweeper SessionSweeper, logger *zap.Logger, cronExpr string, maxIdle time.Duration) error {
	return scheduler.AddJob(SessionSweepJobName, cronExpr, func() error {
		if removed := sweeper.Sweep(maxIdle); removed > 0 {
			logger.Info("evicted idle sessions", zap.Int("removed", removed))
		}
		return nil
	})
}
