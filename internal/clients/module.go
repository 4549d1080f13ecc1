// Package clients provides the broker pipeline bounded context: opportunity
// scoring, pipeline and monitoring insights, and the payment calculator.
package clients

import (
	"fmt"

	"broker_portal_backend/internal/clients/handler"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/clients/service"
	apphttp "broker_portal_backend/internal/http"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the clients module with all its dependencies.
func NewModule(pool *pgxpool.Pool, rates marketrate.Provider, cfg config.ScoringConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	if err := handler.RegisterValidations(val); err != nil {
		return nil, fmt.Errorf("register client validations: %w", err)
	}

	repo := repository.New(pool)
	svc := service.New(repo, rates, scorer, insights.DefaultThresholds(), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}, nil
}

// NewScorer builds a scorer from configuration, loading the profile file when set.
func NewScorer(cfg config.ScoringConfig) (*scoring.Scorer, error) {
	profile := scoring.DefaultProfile()
	if path := cfg.GetScoringProfilePath(); path != "" {
		loaded, err := scoring.LoadProfile(path)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	return scoring.NewScorer(profile, scoring.Options{
		AssumedRateSpreadWhenMissing: cfg.GetAssumedRateSpread(),
		RequireCurrentRate:           cfg.GetRequireCurrentRate(),
		DefaultTermYears:             cfg.GetDefaultTermYears(),
	})
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for background jobs.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts opportunity, insight and calculator routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	opportunities := ctx.Protected.Group("/opportunities")
	opportunities.GET("", m.handler.ListOpportunities)
	opportunities.POST("/score", m.handler.ScorePayload)
	opportunities.GET("/:clientId", m.handler.GetOpportunity)

	ctx.Protected.GET("/pipeline/insights", m.handler.PipelineInsights)
	ctx.Protected.GET("/monitoring/insights", m.handler.MonitoringInsights)
	ctx.Protected.POST("/calculator/payment", m.handler.CalculatePayment)
}

var _ apphttp.Module = (*Module)(nil)
