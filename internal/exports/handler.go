package exports

import (
	"errors"
	"io"
	"net/http"
	"time"

	"broker_portal_backend/platform/httpkit"
	"broker_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 20

// CallListRequest is the body of POST /exports/call-list.
type CallListRequest struct {
	Product string `json:"product" validate:"omitempty,max=50"`
	Limit   int    `json:"limit" validate:"gte=0,lte=500"`
}

// HistoryRequest is the query of GET /exports/call-list.
type HistoryRequest struct {
	Limit int `form:"limit" validate:"gte=0,lte=100"`
}

// ExportResponse describes one export.
type ExportResponse struct {
	ID          uuid.UUID `json:"id"`
	ObjectKey   string    `json:"objectKey"`
	Product     string    `json:"product"`
	MarketRate  float64   `json:"marketRate"`
	Rows        int       `json:"rows"`
	Trigger     string    `json:"trigger"`
	CreatedAt   time.Time `json:"createdAt"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
	Skipped     int       `json:"skipped"`
}

// Handler handles call-list export requests.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new export handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ExportCallList uploads the broker's ranked call list and returns a download link.
func (h *Handler) ExportCallList(c *gin.Context) {
	var req CallListRequest
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

	result, err := h.svc.ExportCallList(c.Request.Context(), identity.BrokerID(), Request{
		Product: req.Product,
		Limit:   req.Limit,
		Trigger: TriggerManual,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	resp := toExportResponse(result.Record, result.DownloadURL, result.ExpiresAt)
	resp.Skipped = len(result.Batch.Skipped)
	httpkit.JSON(c, http.StatusCreated, resp)
}

// ListCallLists returns recent exports of the broker.
func (h *Handler) ListCallLists(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	items, err := h.svc.History(c.Request.Context(), identity.BrokerID(), req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]ExportResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toExportResponse(item.Record, item.DownloadURL, item.ExpiresAt))
	}
	httpkit.OK(c, gin.H{"items": resp})
}

func toExportResponse(rec Record, url string, expiresAt time.Time) ExportResponse {
	return ExportResponse{
		ID:          rec.ID,
		ObjectKey:   rec.ObjectKey,
		Product:     rec.Product,
		MarketRate:  rec.MarketRate,
		Rows:        rec.Rows,
		Trigger:     rec.Trigger,
		CreatedAt:   rec.CreatedAt,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
	}
}
