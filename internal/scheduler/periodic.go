package scheduler

import (
	"context"
	"fmt"
	"time"

	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the recurring sweep and digest tasks.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic registers the monitoring sweep and the daily digest fan-out.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", "error", err)
				return
			}
			log.Debug("periodic task enqueued", "task_type", info.Type, "task_id", info.ID)
		},
	})

	queue := asynq.Queue(queueName(cfg))

	sweep, err := NewMonitoringSweepTask(MonitoringSweepPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(everySpec(cfg.GetMonitoringSweepInterval(), time.Hour), sweep, queue); err != nil {
		return nil, fmt.Errorf("register monitoring sweep: %w", err)
	}

	digest, err := NewOpportunityDigestTask(OpportunityDigestPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(everySpec(cfg.GetDigestInterval(), 24*time.Hour), digest, queue); err != nil {
		return nil, fmt.Errorf("register opportunity digest: %w", err)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run starts the scheduler and stops it when ctx is done.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}

func everySpec(interval, fallback time.Duration) string {
	if interval <= 0 {
		interval = fallback
	}
	return "@every " + interval.String()
}
