package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/summary"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summary"
	"github.com/johnquangdev/meeting-insights/pkg/runcontext"
)

const (
	idempotencyKeyPrefix = "summary:"
	idempotencyTTL       = 24 * time.Hour
)

// Webhook receives meeting-ended notifications and runs the
// summarization pipeline synchronously. Duplicate deliveries with the
// same meeting id within the idempotency window replay the cached
// successful result instead of re-running the pipeline.
type Webhook struct {
	pipeline *summary.Pipeline
	store    cache.Store
	logger   *zap.Logger
}

// NewWebhook creates the webhook handler.
func NewWebhook(pipeline *summary.Pipeline, store cache.Store, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

// HandleMeetingSummary processes one meeting-ended webhook delivery.
func (h *Webhook) HandleMeetingSummary(c echo.Context) error {
	var req entities.SummaryRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("webhook body did not bind", zap.Error(err))
		return c.JSON(http.StatusBadRequest, dto.WebhookResponse{Success: false, Error: "Invalid request"})
	}

	ctx := c.Request().Context()

	if cached, ok := h.cachedResult(c, req.ID); ok {
		h.logger.Info("replaying cached result", zap.String("meetingId", req.ID))
		return c.JSON(http.StatusOK, cached)
	}

	runCtx, cancel := runcontext.Begin(ctx, uuid.New(), req.ID)
	defer cancel()

	res := h.pipeline.Process(runCtx, &req)
	if res.Success {
		h.cacheResult(c, req.ID, res)
	}
	return RespondResult(c, res)
}

func (h *Webhook) cachedResult(c echo.Context, meetingID string) (*dto.WebhookResponse, bool) {
	if h.store == nil || meetingID == "" {
		return nil, false
	}
	raw, found, err := h.store.Get(c.Request().Context(), idempotencyKeyPrefix+meetingID)
	if err != nil {
		h.logger.Warn("idempotency lookup failed", zap.String("meetingId", meetingID), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var resp dto.WebhookResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (h *Webhook) cacheResult(c echo.Context, meetingID string, res summary.Result) {
	if h.store == nil || meetingID == "" {
		return
	}
	raw, err := json.Marshal(dto.WebhookResponse{Success: res.Success, Error: res.Error})
	if err != nil {
		return
	}
	if err := h.store.Set(c.Request().Context(), idempotencyKeyPrefix+meetingID, string(raw), idempotencyTTL); err != nil {
		h.logger.Warn("caching result failed", zap.String("meetingId", meetingID), zap.Error(err))
	}
}
