package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/httpkit"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	clients []domain.ClientRecord
}

func (s stubRepo) ListClients(context.Context, uuid.UUID) ([]domain.ClientRecord, error) {
	return s.clients, nil
}

func (s stubRepo) GetClient(_ context.Context, _, id uuid.UUID) (domain.ClientRecord, error) {
	for _, c := range s.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.ClientRecord{}, apperr.NotFound("client not found")
}

func (s stubRepo) ListMortgages(context.Context, uuid.UUID, string) ([]domain.MortgageRecord, error) {
	return nil, nil
}

func (s stubRepo) ListBrokers(context.Context) ([]repository.Broker, error) { return nil, nil }

func (s stubRepo) GetBroker(context.Context, uuid.UUID) (repository.Broker, error) {
	return repository.Broker{}, nil
}

type stubRates struct{}

func (stubRates) Current(_ context.Context, product string) (marketrate.Rate, error) {
	if product == "" {
		product = "30yr_fixed"
	}
	return marketrate.Rate{Product: product, Rate: 6.25}, nil
}

func newRouter(t *testing.T, clients ...domain.ClientRecord) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	require.NoError(t, RegisterValidations(val))

	svc := service.New(stubRepo{clients: clients}, stubRates{}, scoring.NewDefaultScorer(), insights.DefaultThresholds(), logger.Nop())
	h := New(svc, val)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		httpkit.SetIdentity(c, httpkit.NewIdentity(uuid.New(), "broker@example.com"))
		c.Next()
	})
	engine.GET("/opportunities", h.ListOpportunities)
	engine.POST("/opportunities/score", h.ScorePayload)
	engine.GET("/opportunities/:clientId", h.GetOpportunity)
	engine.GET("/pipeline/insights", h.PipelineInsights)
	engine.POST("/calculator/payment", h.CalculatePayment)
	return engine
}

func do(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestListOpportunities(t *testing.T) {
	rate := 7.0
	engine := newRouter(t,
		domain.ClientRecord{ID: uuid.New(), FirstName: "A", LoanAmount: 300_000, TargetRate: 6.0, CurrentRate: &rate, Stage: domain.StageQualified},
		domain.ClientRecord{ID: uuid.New(), FirstName: "B", LoanAmount: 100_000, TargetRate: 5.0, CurrentRate: &rate, Stage: domain.StageNew},
	)

	rec := do(engine, http.MethodGet, "/opportunities?limit=1&product=15yr_fixed", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.OpportunityListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6.25, resp.MarketRate)
	assert.Equal(t, "15yr_fixed", resp.Product)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Opportunities, 1)
	assert.Equal(t, "A", resp.Opportunities[0].ClientName)
}

func TestListOpportunitiesRejectsBadLimit(t *testing.T) {
	rec := do(newRouter(t), http.MethodGet, "/opportunities?limit=9999", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetOpportunity(t *testing.T) {
	id := uuid.New()
	engine := newRouter(t, domain.ClientRecord{ID: id, FirstName: "Sam", LoanAmount: 200_000, TargetRate: 6.5})

	rec := do(engine, http.MethodGet, "/opportunities/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rateAssumed":true`)

	rec = do(engine, http.MethodGet, "/opportunities/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodGet, "/opportunities/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScorePayload(t *testing.T) {
	engine := newRouter(t)
	current := 7.25

	rec := do(engine, http.MethodPost, "/opportunities/score", transport.ScoreRequest{
		MarketRate: 6.3,
		Clients: []transport.ScoreClientPayload{
			{FirstName: "Jo", LoanAmount: 600_000, TargetRate: 6.5, Stage: "Qualified"},
			{FirstName: "Al", LoanAmount: 150_000, TargetRate: 6.0, CurrentRate: &current, Stage: "nurture"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transport.OpportunityListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Opportunities, 2)
	assert.Equal(t, "Jo", resp.Opportunities[0].ClientName)
	assert.Equal(t, "critical", resp.Opportunities[0].Urgency)
}

func TestScorePayloadRejectsUnknownStage(t *testing.T) {
	rec := do(newRouter(t), http.MethodPost, "/opportunities/score", transport.ScoreRequest{
		MarketRate: 6.3,
		Clients:    []transport.ScoreClientPayload{{LoanAmount: 1, TargetRate: 6, Stage: "underwriting"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rule":"stage"`)
}

func TestPipelineInsights(t *testing.T) {
	engine := newRouter(t, domain.ClientRecord{ID: uuid.New(), Stage: domain.StageProspect, LoanAmount: 250_000})

	rec := do(engine, http.MethodGet, "/pipeline/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.PipelineInsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Stale, 1)
	assert.Len(t, resp.Cold, 1)
	assert.Empty(t, resp.Hot)
	assert.Equal(t, 250_000.0, resp.PipelineValue)
}

func TestCalculatePayment(t *testing.T) {
	engine := newRouter(t)

	rec := do(engine, http.MethodPost, "/calculator/payment", transport.PaymentRequest{Principal: 200_000, AnnualRate: 6, TermYears: 30})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"monthlyPayment":1199.1`)

	rec = do(engine, http.MethodPost, "/calculator/payment", transport.PaymentRequest{Principal: 200_000, AnnualRate: 150, TermYears: 30})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
