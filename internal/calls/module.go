package calls

import (
	apphttp "broker_portal_backend/internal/http"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"
)

// Module is the call preparation module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the briefing service. gen may be nil when no model is configured.
func NewModule(scorer Scorer, gen Generator, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(NewBriefingService(scorer, gen, log), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// RegisterRoutes mounts the briefing route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/opportunities/:clientId/briefing", m.handler.Brief)
}

var _ apphttp.Module = (*Module)(nil)
