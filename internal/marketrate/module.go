package marketrate

import (
	apphttp "broker_portal_backend/internal/http"
	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the market rate bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires the repository, cache and handler.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, cfg config.MarketRateConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(NewRepository(pool), rdb, cfg.GetMarketRateCacheTTL(), cfg.GetDefaultLoanProduct(), log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "marketrate"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts market rate routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/market-rates/:product", m.handler.Get)
	ctx.Protected.POST("/market-rates/:product", m.handler.Publish)
}

var _ apphttp.Module = (*Module)(nil)
