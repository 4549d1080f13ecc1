package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/internal/finance"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type fakeRepo struct {
	clients   []domain.ClientRecord
	mortgages []domain.MortgageRecord
	products  []string
	err       error
}

func (f *fakeRepo) ListClients(context.Context, uuid.UUID) ([]domain.ClientRecord, error) {
	return f.clients, f.err
}

func (f *fakeRepo) GetClient(_ context.Context, _, clientID uuid.UUID) (domain.ClientRecord, error) {
	for _, c := range f.clients {
		if c.ID == clientID {
			return c, nil
		}
	}
	return domain.ClientRecord{}, apperr.NotFound("client not found")
}

func (f *fakeRepo) ListMortgages(_ context.Context, _ uuid.UUID, product string) ([]domain.MortgageRecord, error) {
	f.products = append(f.products, product)
	return f.mortgages, f.err
}

func (f *fakeRepo) ListBrokers(context.Context) ([]repository.Broker, error) { return nil, nil }

func (f *fakeRepo) GetBroker(context.Context, uuid.UUID) (repository.Broker, error) {
	return repository.Broker{}, nil
}

type fixedRate struct {
	rate marketrate.Rate
	err  error
}

func (f fixedRate) Current(_ context.Context, product string) (marketrate.Rate, error) {
	if f.err != nil {
		return marketrate.Rate{}, f.err
	}
	r := f.rate
	if product != "" {
		r.Product = product
	}
	return r, nil
}

func newService(repo *fakeRepo, rates marketrate.Provider) *Service {
	svc := New(repo, rates, scoring.NewDefaultScorer(), insights.DefaultThresholds(), logger.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestRankScoresAgainstCurrentRate(t *testing.T) {
	hot := domain.ClientRecord{ID: uuid.New(), FirstName: "Hot", LoanAmount: 650_000, TargetRate: 6.5,
		CurrentRate: ptr(7.4), Stage: domain.StageApplication}
	warm := domain.ClientRecord{ID: uuid.New(), FirstName: "Warm", LoanAmount: 200_000, TargetRate: 6.0,
		CurrentRate: ptr(6.6), Stage: domain.StageContacted, LastContact: ptr(fixedNow.Add(-48 * time.Hour))}
	broken := domain.ClientRecord{ID: uuid.New(), FirstName: "Broken", LoanAmount: -5, TargetRate: 6}

	repo := &fakeRepo{clients: []domain.ClientRecord{warm, broken, hot}}
	svc := newService(repo, fixedRate{rate: marketrate.Rate{Product: "30yr_fixed", Rate: 6.4}})

	ranking, err := svc.Rank(context.Background(), uuid.New(), "", 1)
	require.NoError(t, err)

	assert.Equal(t, 6.4, ranking.Rate.Rate)
	assert.Equal(t, fixedNow, ranking.GeneratedAt)
	assert.Equal(t, 2, ranking.Batch.Total)
	require.Len(t, ranking.Batch.Scores, 1)
	assert.Equal(t, hot.ID, ranking.Batch.Scores[0].ClientID)
	require.Len(t, ranking.Batch.Skipped, 1)
	assert.Equal(t, broken.ID, ranking.Batch.Skipped[0].ClientID)
}

func TestRankPropagatesLoadErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := newService(&fakeRepo{err: boom}, fixedRate{rate: marketrate.Rate{Rate: 6}})

	_, err := svc.Rank(context.Background(), uuid.New(), "", 0)
	assert.ErrorIs(t, err, boom)

	svc = newService(&fakeRepo{}, fixedRate{err: apperr.NotFound("no market rate")})
	_, err = svc.Rank(context.Background(), uuid.New(), "", 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestScoreOne(t *testing.T) {
	c := domain.ClientRecord{ID: uuid.New(), LoanAmount: 300_000, TargetRate: 6.0, CurrentRate: ptr(7.0), Stage: domain.StageQualified}
	svc := newService(&fakeRepo{clients: []domain.ClientRecord{c}}, fixedRate{rate: marketrate.Rate{Rate: 6.0}})

	score, rate, err := svc.ScoreOne(context.Background(), uuid.New(), c.ID, "15yr_fixed")
	require.NoError(t, err)
	assert.Equal(t, c.ID, score.ClientID)
	assert.Equal(t, "15yr_fixed", rate.Product)
	assert.Equal(t, 10, score.Breakdown.TargetHit)

	_, _, err = svc.ScoreOne(context.Background(), uuid.New(), uuid.New(), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMonitoringUsesResolvedProduct(t *testing.T) {
	m := domain.MortgageRecord{ID: uuid.New(), TargetRate: 6.5, LoanAmount: 100_000}
	repo := &fakeRepo{mortgages: []domain.MortgageRecord{m}}
	svc := newService(repo, fixedRate{rate: marketrate.Rate{Product: "30yr_fixed", Rate: 6.4}})

	got, rate, now, err := svc.Monitoring(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"30yr_fixed"}, repo.products)
	assert.Equal(t, 6.4, rate.Rate)
	assert.Equal(t, fixedNow, now)
	assert.Len(t, got.TargetHit, 1)
}

func TestPipeline(t *testing.T) {
	repo := &fakeRepo{clients: []domain.ClientRecord{
		{ID: uuid.New(), Stage: domain.StageNew, LoanAmount: 100_000},
		{ID: uuid.New(), Stage: domain.StageLost, LoanAmount: 400_000},
	}}
	svc := newService(repo, fixedRate{})

	got, now, err := svc.Pipeline(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, now)
	assert.Equal(t, 100_000.0, got.PipelineValue)
	assert.Len(t, got.Stale, 1)

	resp := ToPipelineResponse(got, now)
	assert.Equal(t, 1, resp.StageCounts["new"])
	assert.Equal(t, domain.NeverContactedDays, resp.Stale[0].DaysSinceContact)
}

func TestCalculatePayment(t *testing.T) {
	resp, err := CalculatePayment(transport.PaymentRequest{Principal: 400_000, AnnualRate: 7, TermYears: 30, TargetRate: ptr(6.0)})
	require.NoError(t, err)

	current, _ := finance.MonthlyPayment(400_000, 7, 30)
	target, _ := finance.MonthlyPayment(400_000, 6, 30)

	assert.Equal(t, finance.RoundCents(current), resp.MonthlyPayment)
	require.NotNil(t, resp.TargetPayment)
	assert.Equal(t, finance.RoundCents(target), *resp.TargetPayment)
	require.NotNil(t, resp.SavingsMonthly)
	assert.Equal(t, finance.RoundCents(current-target), *resp.SavingsMonthly)

	plain, err := CalculatePayment(transport.PaymentRequest{Principal: 1200, AnnualRate: 0, TermYears: 1})
	require.NoError(t, err)
	assert.Equal(t, 100.0, plain.MonthlyPayment)
	assert.Nil(t, plain.SavingsMonthly)

	_, err = CalculatePayment(transport.PaymentRequest{Principal: 1000, AnnualRate: 5, TermYears: 0})
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestRecordsFromPayload(t *testing.T) {
	id := uuid.New()
	records, err := RecordsFromPayload(transport.ScoreRequest{Clients: []transport.ScoreClientPayload{
		{ID: &id, Stage: "Qualified", LoanAmount: 1},
		{Stage: ""},
	}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, domain.StageQualified, records[0].Stage)
	assert.Equal(t, domain.StageUnknown, records[1].Stage)
	assert.NotEqual(t, uuid.Nil, records[1].ID)

	_, err = RecordsFromPayload(transport.ScoreRequest{Clients: []transport.ScoreClientPayload{{Stage: "bogus"}}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
