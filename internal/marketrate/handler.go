package marketrate

import (
	"net/http"

	"broker_portal_backend/platform/httpkit"
	"broker_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// PublishRateRequest records a benchmark rate observation.
type PublishRateRequest struct {
	Rate   float64 `json:"rate" validate:"required,gt=0,lte=100"`
	Source string  `json:"source" validate:"omitempty,max=100"`
}

// Handler serves market rate endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a market rate handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Get returns the current rate for a product.
// GET /api/v1/market-rates/:product
func (h *Handler) Get(c *gin.Context) {
	rate, err := h.svc.Current(c.Request.Context(), c.Param("product"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rate)
}

// Publish records a new observation for a product.
// POST /api/v1/market-rates/:product
func (h *Handler) Publish(c *gin.Context) {
	var req PublishRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	rate, err := h.svc.Publish(c.Request.Context(), c.Param("product"), req.Rate, req.Source)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, rate)
}
