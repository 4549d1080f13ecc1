package calls

import (
	"errors"
	"io"
	"net/http"

	"broker_portal_backend/platform/httpkit"
	"broker_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BriefingRequest carries optional context for the briefing.
type BriefingRequest struct {
	Product string `json:"product" validate:"omitempty,max=50"`
	Notes   string `json:"notes" validate:"omitempty,max=4000"`
}

// Handler serves call briefing endpoints.
type Handler struct {
	svc *BriefingService
	val *validator.Validator
}

// NewHandler creates a call briefing handler.
func NewHandler(svc *BriefingService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Brief generates talking points for one client.
// POST /api/v1/opportunities/:clientId/briefing
func (h *Handler) Brief(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client ID", nil)
		return
	}

	var req BriefingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	briefing, err := h.svc.Brief(c.Request.Context(), identity.BrokerID(), clientID, req.Product, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, briefing)
}
