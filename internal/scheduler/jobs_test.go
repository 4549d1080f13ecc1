package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/clients/scoring"
	clientservice "broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/exports"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/internal/monitoring"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	products []string
	calls    int
}

func (f *fakeSweeper) Sweep(_ context.Context, products []string) (monitoring.Summary, error) {
	f.calls++
	f.products = products
	return monitoring.Summary{}, nil
}

type fakeBrokers []repository.Broker

func (f fakeBrokers) ListBrokers(context.Context) ([]repository.Broker, error) { return f, nil }

type fakeEnqueuer struct {
	payloads []OpportunityDigestPayload
}

func (f *fakeEnqueuer) EnqueueOpportunityDigest(_ context.Context, p OpportunityDigestPayload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

func batchOf(n int) scoring.BatchResult {
	batch := scoring.BatchResult{Total: n}
	for i := 0; i < n; i++ {
		batch.Scores = append(batch.Scores, domain.OpportunityScore{
			ClientName: "Client", Score: 100 - i, Urgency: domain.UrgencyHigh, SavingsMonthly: 250,
		})
	}
	return batch
}

type fakeRanker struct {
	limit int
}

func (f *fakeRanker) Rank(_ context.Context, _ uuid.UUID, product string, limit int) (clientservice.Ranking, error) {
	f.limit = limit
	return clientservice.Ranking{Batch: batchOf(limit), Rate: marketrate.Rate{Product: product, Rate: 6.1}}, nil
}

type fakeExporter struct {
	enabled bool
	req     exports.Request
	err     error
}

func (f *fakeExporter) Enabled() bool { return f.enabled }

func (f *fakeExporter) ExportCallList(_ context.Context, _ uuid.UUID, req exports.Request) (exports.Result, error) {
	f.req = req
	if f.err != nil {
		return exports.Result{}, f.err
	}
	batch := batchOf(30)
	batch.Total = 42
	return exports.Result{
		Batch:       batch,
		Rate:        marketrate.Rate{Product: "30yr_fixed", Rate: 6.0},
		DownloadURL: "https://files.example.com/list.csv",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

type digestRecorder struct {
	mu      sync.Mutex
	digests []events.OpportunityDigestReady
}

func (r *digestRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests = append(r.digests, e.(events.OpportunityDigestReady))
	return nil
}

func newJobs(t *testing.T, exporter CallListExporter) (*Jobs, *events.InMemoryBus, *digestRecorder, *fakeEnqueuer, *fakeSweeper, *fakeRanker) {
	t.Helper()
	bus := events.NewInMemoryBus(logger.Nop())
	rec := &digestRecorder{}
	bus.Subscribe(events.OpportunityDigestReady{}.EventName(), events.HandlerFunc(rec.handle))

	sweeper := &fakeSweeper{}
	enqueuer := &fakeEnqueuer{}
	ranker := &fakeRanker{}
	brokers := fakeBrokers{{ID: uuid.New()}, {ID: uuid.New()}}
	return NewJobs(sweeper, brokers, ranker, exporter, enqueuer, bus, 5, logger.Nop()), bus, rec, enqueuer, sweeper, ranker
}

func TestHandleMonitoringSweepPassesProducts(t *testing.T) {
	jobs, _, _, _, sweeper, _ := newJobs(t, nil)

	task, err := NewMonitoringSweepTask(MonitoringSweepPayload{Products: []string{"15yr_fixed"}})
	require.NoError(t, err)
	require.NoError(t, jobs.HandleMonitoringSweep(context.Background(), task))

	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, []string{"15yr_fixed"}, sweeper.products)
}

func TestHandleMonitoringSweepSkipsRetryOnBadPayload(t *testing.T) {
	jobs, _, _, _, _, _ := newJobs(t, nil)

	err := jobs.HandleMonitoringSweep(context.Background(), asynq.NewTask(TaskMonitoringSweep, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDigestFansOutPerBroker(t *testing.T) {
	jobs, _, rec, enqueuer, _, _ := newJobs(t, nil)

	task, err := NewOpportunityDigestTask(OpportunityDigestPayload{Product: "30yr_fixed"})
	require.NoError(t, err)
	require.NoError(t, jobs.HandleOpportunityDigest(context.Background(), task))

	require.Len(t, enqueuer.payloads, 2)
	assert.Equal(t, "30yr_fixed", enqueuer.payloads[0].Product)
	assert.NotEmpty(t, enqueuer.payloads[0].BrokerID)
	assert.Empty(t, rec.digests)
}

func TestDigestWithExportIncludesDownloadLink(t *testing.T) {
	exporter := &fakeExporter{enabled: true}
	jobs, bus, rec, _, _, _ := newJobs(t, exporter)

	task, err := NewOpportunityDigestTask(OpportunityDigestPayload{BrokerID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, jobs.HandleOpportunityDigest(context.Background(), task))
	bus.Wait()

	assert.Equal(t, exports.TriggerDigest, exporter.req.Trigger)
	require.Len(t, rec.digests, 1)
	digest := rec.digests[0]
	assert.Len(t, digest.TopClients, 5)
	assert.Equal(t, 42, digest.ScoredClients)
	assert.Equal(t, "https://files.example.com/list.csv", digest.DownloadURL)
	assert.Equal(t, 6.0, digest.MarketRate)
}

func TestDigestWithoutStorageRanksOnly(t *testing.T) {
	jobs, bus, rec, _, _, ranker := newJobs(t, &fakeExporter{enabled: false})

	require.NoError(t, jobs.BuildDigest(context.Background(), uuid.New(), ""))
	bus.Wait()

	assert.Equal(t, 5, ranker.limit)
	require.Len(t, rec.digests, 1)
	assert.Empty(t, rec.digests[0].DownloadURL)
	assert.Len(t, rec.digests[0].TopClients, 5)
}

func TestDigestExportFailureIsReturned(t *testing.T) {
	jobs, bus, rec, _, _, _ := newJobs(t, &fakeExporter{enabled: true, err: errors.New("bucket gone")})

	err := jobs.BuildDigest(context.Background(), uuid.New(), "")
	bus.Wait()
	assert.Error(t, err)
	assert.Empty(t, rec.digests)
}

func TestDigestRejectsInvalidBrokerID(t *testing.T) {
	jobs, _, _, _, _, _ := newJobs(t, nil)

	task, err := NewOpportunityDigestTask(OpportunityDigestPayload{BrokerID: "not-a-uuid"})
	require.NoError(t, err)
	assert.ErrorIs(t, jobs.HandleOpportunityDigest(context.Background(), task), asynq.SkipRetry)
}

func TestEverySpec(t *testing.T) {
	assert.Equal(t, "@every 1h0m0s", everySpec(time.Hour, time.Minute))
	assert.Equal(t, "@every 24h0m0s", everySpec(0, 24*time.Hour))
}

func TestJobOutcome(t *testing.T) {
	assert.Equal(t, "success", jobOutcome(nil))
	assert.Equal(t, "dropped", jobOutcome(fmt.Errorf("%w: bad payload", asynq.SkipRetry)))
	assert.Equal(t, "error", jobOutcome(errors.New("boom")))
}
