// Package service loads broker records and runs the scoring and insight
// functions over them.
package service

import (
	"context"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultOpportunityLimit caps the ranked list when the caller gives no limit.
const DefaultOpportunityLimit = 25

// Ranking is a scored batch together with the rate it was scored against.
type Ranking struct {
	Batch       scoring.BatchResult
	Rate        marketrate.Rate
	GeneratedAt time.Time
}

// Service provides opportunity scoring and pipeline insights for a broker.
type Service struct {
	repo       repository.Repository
	rates      marketrate.Provider
	scorer     *scoring.Scorer
	thresholds insights.Thresholds
	log        *logger.Logger
	now        func() time.Time
}

// New creates a new clients service.
func New(repo repository.Repository, rates marketrate.Provider, scorer *scoring.Scorer, thresholds insights.Thresholds, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		rates:      rates,
		scorer:     scorer,
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
}

// Scorer exposes the configured scorer.
func (s *Service) Scorer() *scoring.Scorer {
	return s.scorer
}

// Rank loads the broker's clients and the market rate concurrently, then
// scores and ranks them. limit <= 0 keeps every client.
func (s *Service) Rank(ctx context.Context, brokerID uuid.UUID, product string, limit int) (Ranking, error) {
	var (
		clients []domain.ClientRecord
		rate    marketrate.Rate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.repo.ListClients(gctx, brokerID)
		return err
	})
	g.Go(func() error {
		var err error
		rate, err = s.rates.Current(gctx, product)
		return err
	})
	if err := g.Wait(); err != nil {
		return Ranking{}, err
	}

	now := s.now()
	batch := s.scoreBatch("broker", clients, rate.Rate, now, limit)
	s.log.WithContext(ctx).ScoreBatch(brokerID.String(), len(batch.Scores), len(batch.Skipped), rate.Rate)

	return Ranking{Batch: batch, Rate: rate, GeneratedAt: now}, nil
}

// ScoreOne scores a single client of the broker.
func (s *Service) ScoreOne(ctx context.Context, brokerID, clientID uuid.UUID, product string) (domain.OpportunityScore, marketrate.Rate, error) {
	var (
		client domain.ClientRecord
		rate   marketrate.Rate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		client, err = s.repo.GetClient(gctx, brokerID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		rate, err = s.rates.Current(gctx, product)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.OpportunityScore{}, marketrate.Rate{}, err
	}

	score, err := s.scorer.ScoreClient(client, rate.Rate, s.now())
	if err != nil {
		return domain.OpportunityScore{}, marketrate.Rate{}, err
	}
	metrics.OpportunityScores.WithLabelValues(string(score.Urgency)).Inc()
	return score, rate, nil
}

// ScoreRecords scores records that were supplied by the caller.
func (s *Service) ScoreRecords(clients []domain.ClientRecord, marketRate float64, asOf time.Time, limit int) scoring.BatchResult {
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.scoreBatch("adhoc", clients, marketRate, asOf, limit)
}

// Pipeline buckets the broker's clients.
func (s *Service) Pipeline(ctx context.Context, brokerID uuid.UUID) (domain.PipelineInsights, time.Time, error) {
	clients, err := s.repo.ListClients(ctx, brokerID)
	if err != nil {
		return domain.PipelineInsights{}, time.Time{}, err
	}
	now := s.now()
	return s.thresholds.Pipeline(clients, now), now, nil
}

// Monitoring buckets the broker's mortgages for product against its market
// rate. An empty product means the default product.
func (s *Service) Monitoring(ctx context.Context, brokerID uuid.UUID, product string) (domain.MonitoringInsights, marketrate.Rate, time.Time, error) {
	rate, err := s.rates.Current(ctx, product)
	if err != nil {
		return domain.MonitoringInsights{}, marketrate.Rate{}, time.Time{}, err
	}

	mortgages, err := s.repo.ListMortgages(ctx, brokerID, rate.Product)
	if err != nil {
		return domain.MonitoringInsights{}, marketrate.Rate{}, time.Time{}, err
	}

	now := s.now()
	return s.thresholds.Monitoring(mortgages, rate.Rate, now), rate, now, nil
}

func (s *Service) scoreBatch(source string, clients []domain.ClientRecord, marketRate float64, now time.Time, limit int) scoring.BatchResult {
	start := time.Now()
	batch := s.scorer.ScoreClients(clients, marketRate, now, limit)
	metrics.OpportunityBatchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	for _, score := range batch.Scores {
		metrics.OpportunityScores.WithLabelValues(string(score.Urgency)).Inc()
	}
	for _, skipped := range batch.Skipped {
		s.log.Warn("client skipped during scoring", "client_id", skipped.ClientID, "error", skipped.Err)
	}
	return batch
}
