package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"broker_portal_backend/platform/cache"
	"broker_portal_backend/platform/config"

	"github.com/hibiken/asynq"
)

// digestRetention keeps per-broker digest task IDs unique for a day so a
// re-run of the fan-out does not email twice.
const digestRetention = 20 * time.Hour

type Client struct {
	client *asynq.Client
	queue  string
}

// DigestEnqueuer queues per-broker digest tasks.
type DigestEnqueuer interface {
	EnqueueOpportunityDigest(ctx context.Context, payload OpportunityDigestPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueMonitoringSweep queues an immediate sweep.
func (c *Client) EnqueueMonitoringSweep(ctx context.Context, payload MonitoringSweepPayload) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewMonitoringSweepTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueOpportunityDigest queues a digest for one broker, once per day.
func (c *Client) EnqueueOpportunityDigest(ctx context.Context, payload OpportunityDigestPayload) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewOpportunityDigestTask(payload)
	if err != nil {
		return err
	}

	taskID := fmt.Sprintf("digest:%s:%s:%s", payload.BrokerID, payload.Product, time.Now().UTC().Format("2006-01-02"))
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(taskID),
		asynq.Retention(digestRetention),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(cfg config.RedisConfig) (asynq.RedisClientOpt, error) {
	if cfg.GetRedisURL() == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := cache.ParseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

var _ DigestEnqueuer = (*Client)(nil)
