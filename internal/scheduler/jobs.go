package scheduler

import (
	"context"
	"fmt"

	"broker_portal_backend/internal/clients/scoring"
	clientservice "broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/exports"
	"broker_portal_backend/internal/monitoring"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Sweeper runs a monitoring sweep.
type Sweeper interface {
	Sweep(ctx context.Context, products []string) (monitoring.Summary, error)
}

// Ranker scores a broker's clients.
type Ranker interface {
	Rank(ctx context.Context, brokerID uuid.UUID, product string, limit int) (clientservice.Ranking, error)
}

// CallListExporter uploads call lists.
type CallListExporter interface {
	Enabled() bool
	ExportCallList(ctx context.Context, brokerID uuid.UUID, req exports.Request) (exports.Result, error)
}

// Jobs holds the task handlers.
type Jobs struct {
	sweeper  Sweeper
	brokers  monitoring.BrokerLister
	ranker   Ranker
	exporter CallListExporter
	enqueuer DigestEnqueuer
	bus      events.Bus
	topN     int
	log      *logger.Logger
}

// NewJobs creates the task handlers. exporter may be disabled, in which case
// digests are sent without a download link.
func NewJobs(sweeper Sweeper, brokers monitoring.BrokerLister, ranker Ranker, exporter CallListExporter, enqueuer DigestEnqueuer, bus events.Bus, topN int, log *logger.Logger) *Jobs {
	if topN <= 0 {
		topN = 10
	}
	return &Jobs{
		sweeper:  sweeper,
		brokers:  brokers,
		ranker:   ranker,
		exporter: exporter,
		enqueuer: enqueuer,
		bus:      bus,
		topN:     topN,
		log:      log,
	}
}

// Register mounts the handlers on mux.
func (j *Jobs) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskMonitoringSweep, j.HandleMonitoringSweep)
	mux.HandleFunc(TaskOpportunityDigest, j.HandleOpportunityDigest)
}

// HandleMonitoringSweep raises target-hit alerts.
func (j *Jobs) HandleMonitoringSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMonitoringSweepPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	_, err = j.sweeper.Sweep(ctx, payload.Products)
	return err
}

// HandleOpportunityDigest fans out to every broker or builds one broker's digest.
func (j *Jobs) HandleOpportunityDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOpportunityDigestPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if payload.BrokerID == "" {
		return j.fanOutDigest(ctx, payload.Product)
	}

	brokerID, err := uuid.Parse(payload.BrokerID)
	if err != nil {
		return fmt.Errorf("%w: invalid broker id %q", asynq.SkipRetry, payload.BrokerID)
	}
	return j.BuildDigest(ctx, brokerID, payload.Product)
}

func (j *Jobs) fanOutDigest(ctx context.Context, product string) error {
	brokers, err := j.brokers.ListBrokers(ctx)
	if err != nil {
		return fmt.Errorf("list brokers: %w", err)
	}
	for _, broker := range brokers {
		err := j.enqueuer.EnqueueOpportunityDigest(ctx, OpportunityDigestPayload{
			BrokerID: broker.ID.String(),
			Product:  product,
		})
		if err != nil {
			return fmt.Errorf("enqueue digest for broker %s: %w", broker.ID, err)
		}
	}
	j.log.Info("opportunity digests queued", "brokers", len(brokers))
	return nil
}

// BuildDigest ranks the broker's clients, exports the call list when storage
// is available and publishes the digest event.
func (j *Jobs) BuildDigest(ctx context.Context, brokerID uuid.UUID, product string) error {
	digest := events.OpportunityDigestReady{
		BaseEvent: events.NewBaseEvent(),
		BrokerID:  brokerID,
	}

	if j.exporter != nil && j.exporter.Enabled() {
		result, err := j.exporter.ExportCallList(ctx, brokerID, exports.Request{
			Product: product,
			Trigger: exports.TriggerDigest,
		})
		if err != nil {
			return err
		}
		digest.MarketRate = result.Rate.Rate
		digest.ScoredClients = result.Batch.Total
		digest.DownloadURL = result.DownloadURL
		digest.URLExpiresAt = result.ExpiresAt
		digest.TopClients = digestEntries(result.Batch, j.topN)
	} else {
		ranking, err := j.ranker.Rank(ctx, brokerID, product, j.topN)
		if err != nil {
			return err
		}
		digest.MarketRate = ranking.Rate.Rate
		digest.ScoredClients = ranking.Batch.Total
		digest.TopClients = digestEntries(ranking.Batch, j.topN)
	}

	j.bus.Publish(ctx, digest)
	return nil
}

func digestEntries(batch scoring.BatchResult, n int) []events.DigestEntry {
	scores := batch.Scores
	if len(scores) > n {
		scores = scores[:n]
	}
	entries := make([]events.DigestEntry, 0, len(scores))
	for _, score := range scores {
		entries = append(entries, events.DigestEntry{
			ClientName:     score.ClientName,
			Score:          score.Score,
			Urgency:        string(score.Urgency),
			SavingsMonthly: score.SavingsMonthly,
		})
	}
	return entries
}
