package exports

import (
	"context"
	"fmt"

	"broker_portal_backend/internal/adapters/storage"
	"broker_portal_backend/internal/events"
	apphttp "broker_portal_backend/internal/http"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is the configuration the exports module reads.
type ModuleConfig interface {
	config.MinIOConfig
	config.PhoneConfig
}

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires storage, history and the export service. Storage stays
// disabled when MinIO is not configured.
func NewModule(ctx context.Context, pool *pgxpool.Pool, clients ClientLister, rates marketrate.Provider, scorer RecordScorer, bus events.Bus, cfg ModuleConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	var store storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioStore, err := storage.NewMinIOService(cfg)
		if err != nil {
			return nil, err
		}
		if err := minioStore.EnsureBucketExists(ctx, cfg.GetMinioBucketExports()); err != nil {
			return nil, fmt.Errorf("ensure exports bucket: %w", err)
		}
		store = minioStore
	} else {
		log.Warn("MinIO not configured, call-list exports disabled")
	}

	svc := NewService(clients, rates, scorer, store, cfg.GetMinioBucketExports(), NewRepository(pool), bus, cfg.GetDefaultPhoneRegion(), log)
	return &Module{handler: NewHandler(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// Service returns the export service for background jobs.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts export routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/exports/call-list", m.handler.ExportCallList)
	ctx.Protected.GET("/exports/call-list", m.handler.ListCallLists)
}

var _ apphttp.Module = (*Module)(nil)
