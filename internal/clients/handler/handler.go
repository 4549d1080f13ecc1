package handler

import (
	"net/http"
	"time"

	"broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/platform/httpkit"
	"broker_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid client ID"
)

// Handler handles HTTP requests for opportunities and insights.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new clients handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListOpportunities ranks the broker's clients.
// GET /api/v1/opportunities
func (h *Handler) ListOpportunities(c *gin.Context) {
	var req transport.ListOpportunitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = service.DefaultOpportunityLimit
	}

	ranking, err := h.svc.Rank(c.Request.Context(), identity.BrokerID(), req.Product, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToOpportunityListResponse(ranking.Batch, ranking.Rate.Rate, ranking.Rate.Product, ranking.GeneratedAt))
}

// GetOpportunity scores one client.
// GET /api/v1/opportunities/:clientId
func (h *Handler) GetOpportunity(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	score, _, err := h.svc.ScoreOne(c.Request.Context(), identity.BrokerID(), clientID, c.Query("product"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToOpportunityResponse(score))
}

// ScorePayload scores clients sent in the request body.
// POST /api/v1/opportunities/score
func (h *Handler) ScorePayload(c *gin.Context) {
	var req transport.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	records, err := service.RecordsFromPayload(req)
	if httpkit.HandleError(c, err) {
		return
	}

	var asOf time.Time
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	batch := h.svc.ScoreRecords(records, req.MarketRate, asOf, req.Limit)
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	httpkit.OK(c, service.ToOpportunityListResponse(batch, req.MarketRate, "", asOf))
}

// PipelineInsights buckets the broker's pipeline.
// GET /api/v1/pipeline/insights
func (h *Handler) PipelineInsights(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, now, err := h.svc.Pipeline(c.Request.Context(), identity.BrokerID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToPipelineResponse(result, now))
}

// MonitoringInsights buckets the broker's monitored mortgages.
// GET /api/v1/monitoring/insights
func (h *Handler) MonitoringInsights(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, rate, now, err := h.svc.Monitoring(c.Request.Context(), identity.BrokerID(), c.Query("product"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToMonitoringResponse(result, rate.Rate, rate.Product, now))
}

// CalculatePayment returns a loan summary.
// POST /api/v1/calculator/payment
func (h *Handler) CalculatePayment(c *gin.Context) {
	var req transport.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	resp, err := service.CalculatePayment(req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
