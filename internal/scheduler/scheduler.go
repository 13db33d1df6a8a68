package scheduler

import (
	"context"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"gobevtrend_api/pkg/logger"
)

// Scheduler triggers orchestrator and scorer runs at fixed wall-clock times.
// It holds no business logic: the orchestrator's own guards decide whether a
// fire actually does anything.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

func NewScheduler(writer io.Writer) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  logger.NewLogger(writer, "[Scheduler]"),
	}
}

// AddJob registers fn on a cron spec (e.g. "0 */2 * * *"). Each fire gets a
// fresh context; overlapping fires are the orchestrator's problem to
// serialize, not the scheduler's.
func (s *Scheduler) AddJob(spec, name string, timeout time.Duration, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.log.Log("firing job %q", name)
		fn(ctx)
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
