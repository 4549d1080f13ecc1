// Package monitoring sweeps monitored mortgages and raises alerts when the
// market reaches a client's target rate.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/finance"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	KindTargetHit     = "target_hit"
	KindCloseToTarget = "close_to_target"
)

// BrokerLister lists every broker.
type BrokerLister interface {
	ListBrokers(ctx context.Context) ([]repository.Broker, error)
}

// InsightSource evaluates a broker's monitored mortgages.
type InsightSource interface {
	Monitoring(ctx context.Context, brokerID uuid.UUID, product string) (domain.MonitoringInsights, marketrate.Rate, time.Time, error)
}

// Summary counts what one sweep did.
type Summary struct {
	Brokers       int
	TargetHits    int
	CloseToTarget int
	Alerted       int
	Suppressed    int
}

// Sweeper raises target-hit alerts at most once per cooldown per mortgage.
type Sweeper struct {
	brokers  BrokerLister
	source   InsightSource
	alerts   AlertLog
	bus      events.Bus
	cooldown time.Duration
	log      *logger.Logger
}

// NewSweeper creates a sweeper.
func NewSweeper(brokers BrokerLister, source InsightSource, alerts AlertLog, bus events.Bus, cooldown time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		brokers:  brokers,
		source:   source,
		alerts:   alerts,
		bus:      bus,
		cooldown: cooldown,
		log:      log,
	}
}

// Sweep evaluates every broker for each product. An empty product list means
// the default product. A failing broker is logged and does not stop the others.
func (s *Sweeper) Sweep(ctx context.Context, products []string) (Summary, error) {
	if len(products) == 0 {
		products = []string{""}
	}

	brokers, err := s.brokers.ListBrokers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list brokers: %w", err)
	}

	var (
		summary Summary
		errs    []error
	)
	for _, broker := range brokers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Brokers++
		for _, product := range products {
			if err := s.sweepBroker(ctx, broker.ID, product, &summary); err != nil {
				s.log.Error("monitoring sweep failed for broker", "broker_id", broker.ID, "product", product, "error", err)
				errs = append(errs, err)
			}
		}
	}

	s.log.Info("monitoring sweep finished",
		"brokers", summary.Brokers,
		"target_hits", summary.TargetHits,
		"close_to_target", summary.CloseToTarget,
		"alerted", summary.Alerted,
		"suppressed", summary.Suppressed)
	return summary, errors.Join(errs...)
}

func (s *Sweeper) sweepBroker(ctx context.Context, brokerID uuid.UUID, product string, summary *Summary) error {
	result, rate, now, err := s.source.Monitoring(ctx, brokerID, product)
	if err != nil {
		return err
	}

	summary.CloseToTarget += len(result.CloseToTarget)
	metrics.RateAlerts.WithLabelValues(KindCloseToTarget).Add(float64(len(result.CloseToTarget)))

	for _, m := range result.TargetHit {
		summary.TargetHits++
		alerted, err := s.alertTargetHit(ctx, m, rate.Rate, now)
		if err != nil {
			return err
		}
		if alerted {
			summary.Alerted++
		} else {
			summary.Suppressed++
		}
	}
	return nil
}

func (s *Sweeper) alertTargetHit(ctx context.Context, m domain.MortgageRecord, fallbackRate float64, now time.Time) (bool, error) {
	last, err := s.alerts.LastAlertAt(ctx, m.ID, KindTargetHit)
	if err != nil {
		return false, fmt.Errorf("read last alert for mortgage %s: %w", m.ID, err)
	}
	if last != nil && now.Sub(*last) < s.cooldown {
		return false, nil
	}

	marketRate := insights.MarketRateFor(m, fallbackRate)
	savings, err := finance.MonthlySavings(m.LoanAmount, m.CurrentRate, marketRate, m.TermYears)
	if err != nil {
		s.log.Warn("savings unavailable for rate alert", "mortgage_id", m.ID, "error", err)
		savings = 0
	}

	if err := s.alerts.RecordAlert(ctx, Alert{
		MortgageID: m.ID,
		BrokerID:   m.BrokerID,
		Kind:       KindTargetHit,
		MarketRate: marketRate,
		TargetRate: m.TargetRate,
	}); err != nil {
		return false, fmt.Errorf("record alert for mortgage %s: %w", m.ID, err)
	}

	s.bus.Publish(ctx, events.RateTargetHit{
		BaseEvent:      events.NewBaseEvent(),
		MortgageID:     m.ID,
		ClientID:       m.ClientID,
		BrokerID:       m.BrokerID,
		ClientName:     m.FullName(),
		ClientPhone:    m.Phone,
		LoanProduct:    m.LoanProduct,
		MarketRate:     marketRate,
		TargetRate:     m.TargetRate,
		SavingsMonthly: finance.RoundCents(savings),
	})
	metrics.RateAlerts.WithLabelValues(KindTargetHit).Inc()
	s.log.RateAlert(KindTargetHit, m.ID.String(), marketRate, m.TargetRate)
	return true, nil
}
