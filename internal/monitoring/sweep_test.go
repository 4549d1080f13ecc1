package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sweepNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type staticBrokers []repository.Broker

func (b staticBrokers) ListBrokers(context.Context) ([]repository.Broker, error) { return b, nil }

type staticSource struct {
	mortgages map[uuid.UUID][]domain.MortgageRecord
	failFor   uuid.UUID
}

func (s staticSource) Monitoring(_ context.Context, brokerID uuid.UUID, product string) (domain.MonitoringInsights, marketrate.Rate, time.Time, error) {
	if brokerID == s.failFor {
		return domain.MonitoringInsights{}, marketrate.Rate{}, time.Time{}, errors.New("database unavailable")
	}
	if product == "" {
		product = "30yr_fixed"
	}
	rate := marketrate.Rate{Product: product, Rate: 6.0}
	return insights.DefaultThresholds().Monitoring(s.mortgages[brokerID], rate.Rate, sweepNow), rate, sweepNow, nil
}

type memoryAlerts struct {
	mu   sync.Mutex
	last map[uuid.UUID]time.Time
	rows []Alert
}

func newMemoryAlerts() *memoryAlerts {
	return &memoryAlerts{last: map[uuid.UUID]time.Time{}}
}

func (m *memoryAlerts) LastAlertAt(_ context.Context, id uuid.UUID, _ string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.last[id]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func (m *memoryAlerts) RecordAlert(_ context.Context, alert Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[alert.MortgageID] = sweepNow
	m.rows = append(m.rows, alert)
	return nil
}

type recorder struct {
	mu   sync.Mutex
	hits []events.RateTargetHit
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, e.(events.RateTargetHit))
	return nil
}

func mortgage(brokerID uuid.UUID, target float64) domain.MortgageRecord {
	return domain.MortgageRecord{
		ID: uuid.New(), ClientID: uuid.New(), BrokerID: brokerID,
		FirstName: "Dana", LastName: "Whitfield", Phone: "+14155552671",
		LoanAmount: 400000, CurrentRate: 7.0, TargetRate: target, TermYears: 30, LoanProduct: "30yr_fixed",
	}
}

func newSweeper(t *testing.T, source staticSource, brokers staticBrokers, alerts AlertLog) (*Sweeper, *events.InMemoryBus, *recorder) {
	t.Helper()
	bus := events.NewInMemoryBus(logger.Nop())
	rec := &recorder{}
	bus.Subscribe(events.RateTargetHit{}.EventName(), events.HandlerFunc(rec.handle))
	return NewSweeper(brokers, source, alerts, bus, 72*time.Hour, logger.Nop()), bus, rec
}

func TestSweepAlertsTargetHitsOnce(t *testing.T) {
	brokerID := uuid.New()
	hit := mortgage(brokerID, 6.25)
	near := mortgage(brokerID, 5.9)
	far := mortgage(brokerID, 5.0)

	source := staticSource{mortgages: map[uuid.UUID][]domain.MortgageRecord{brokerID: {hit, near, far}}}
	alerts := newMemoryAlerts()
	sweeper, bus, rec := newSweeper(t, source, staticBrokers{{ID: brokerID}}, alerts)

	summary, err := sweeper.Sweep(context.Background(), nil)
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, Summary{Brokers: 1, TargetHits: 1, CloseToTarget: 1, Alerted: 1}, summary)
	require.Len(t, rec.hits, 1)
	assert.Equal(t, hit.ID, rec.hits[0].MortgageID)
	assert.Equal(t, "Dana Whitfield", rec.hits[0].ClientName)
	assert.Equal(t, 6.0, rec.hits[0].MarketRate)
	assert.InDelta(t, 263.01, rec.hits[0].SavingsMonthly, 0.01)

	again, err := sweeper.Sweep(context.Background(), nil)
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, 1, again.Suppressed)
	assert.Equal(t, 0, again.Alerted)
	assert.Len(t, rec.hits, 1)
	assert.Len(t, alerts.rows, 1)
}

func TestSweepRealertsAfterCooldown(t *testing.T) {
	brokerID := uuid.New()
	hit := mortgage(brokerID, 6.5)

	alerts := newMemoryAlerts()
	alerts.last[hit.ID] = sweepNow.Add(-73 * time.Hour)

	source := staticSource{mortgages: map[uuid.UUID][]domain.MortgageRecord{brokerID: {hit}}}
	sweeper, bus, rec := newSweeper(t, source, staticBrokers{{ID: brokerID}}, alerts)

	summary, err := sweeper.Sweep(context.Background(), nil)
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, 1, summary.Alerted)
	assert.Len(t, rec.hits, 1)
}

func TestSweepContinuesPastFailingBroker(t *testing.T) {
	failing := uuid.New()
	healthy := uuid.New()

	source := staticSource{
		failFor:   failing,
		mortgages: map[uuid.UUID][]domain.MortgageRecord{healthy: {mortgage(healthy, 6.1)}},
	}
	sweeper, bus, rec := newSweeper(t, source, staticBrokers{{ID: failing}, {ID: healthy}}, newMemoryAlerts())

	summary, err := sweeper.Sweep(context.Background(), nil)
	require.Error(t, err)
	bus.Wait()

	assert.Equal(t, 2, summary.Brokers)
	assert.Equal(t, 1, summary.Alerted)
	assert.Len(t, rec.hits, 1)
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper, _, _ := newSweeper(t, staticSource{}, staticBrokers{{ID: uuid.New()}}, newMemoryAlerts())
	_, err := sweeper.Sweep(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
