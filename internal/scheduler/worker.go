package scheduler

import (
	"context"
	"errors"
	"time"

	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, jobs *Jobs, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error("scheduler task failed", "task_type", task.Type(), "error", err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.Use(instrument)
	jobs.Register(mux)

	return &Worker{server: server, mux: mux, log: log}, nil
}

// instrument records the outcome and duration of every task.
func instrument(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)
		metrics.JobsProcessed.WithLabelValues(task.Type(), jobOutcome(err)).Inc()
		metrics.JobDuration.WithLabelValues(task.Type()).Observe(time.Since(start).Seconds())
		return err
	})
}

func jobOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, asynq.SkipRetry):
		return "dropped"
	default:
		return "error"
	}
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
