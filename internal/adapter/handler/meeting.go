package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/summary"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summary"
)

// RunLister reads pipeline run audit records.
type RunLister interface {
	ListByMeetingID(ctx context.Context, meetingID string) ([]entities.PipelineRun, error)
	LatestByMeetingID(ctx context.Context, meetingID string) (*entities.PipelineRun, error)
}

// Meeting exposes maintenance endpoints next to the webhook: partial
// metadata corrections and the run audit trail.
type Meeting struct {
	schema *summary.SchemaValidator
	store  summary.MetadataStore
	runs   RunLister
	logger *zap.Logger
}

// NewMeeting creates the meeting handler. runs may be nil when the
// audit database is disabled.
func NewMeeting(schema *summary.SchemaValidator, store summary.MetadataStore, runs RunLister, logger *zap.Logger) *Meeting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Meeting{
		schema: schema,
		store:  store,
		runs:   runs,
		logger: logger,
	}
}

// UpdateMetadata validates a partial metadata body and forwards it to
// the backend upsert. Present fields must satisfy the same constraints
// as the strict shape; absent fields are left untouched.
func (h *Meeting) UpdateMetadata(c echo.Context) error {
	meetingID := c.Param("id")
	if meetingID == "" {
		return RespondError(c, h.logger, errors.ErrInvalidArgument("meeting id is required"))
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return RespondError(c, h.logger, errors.ErrInvalidPayload())
	}

	patch, verr := h.schema.ValidatePartialMetadata(body)
	if verr != nil {
		return c.JSON(http.StatusBadRequest, dto.WebhookResponse{Success: false, Error: verr})
	}

	payload, err := patchPayload(meetingID, patch)
	if err != nil {
		return RespondError(c, h.logger, errors.ErrInternal(err))
	}

	if err := h.store.UpsertMeeting(c.Request().Context(), payload); err != nil {
		h.logger.Error("partial metadata upsert failed", zap.String("meetingId", meetingID), zap.Error(err))
		return c.JSON(http.StatusBadGateway, dto.WebhookResponse{Success: false, Error: "Failed to update meeting metadata"})
	}
	return c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Error: nil})
}

// ListRuns returns the audit trail for a meeting, newest first.
func (h *Meeting) ListRuns(c echo.Context) error {
	if h.runs == nil {
		return RespondError(c, h.logger, errors.ErrNotFound("run history"))
	}

	meetingID := c.Param("id")
	runs, err := h.runs.ListByMeetingID(c.Request().Context(), meetingID)
	if err != nil {
		return RespondError(c, h.logger, errors.ErrDBQueryFailed("list runs", err))
	}

	out := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runResponse(run))
	}
	return c.JSON(http.StatusOK, out)
}

// LatestRun returns the most recent run for a meeting, or 404 when the
// meeting has never been processed.
func (h *Meeting) LatestRun(c echo.Context) error {
	if h.runs == nil {
		return RespondError(c, h.logger, errors.ErrNotFound("run history"))
	}

	meetingID := c.Param("id")
	run, err := h.runs.LatestByMeetingID(c.Request().Context(), meetingID)
	if err != nil {
		return RespondError(c, h.logger, errors.ErrDBQueryFailed("latest run", err))
	}
	if run == nil {
		return RespondError(c, h.logger, errors.ErrNotFound("run history"))
	}
	return c.JSON(http.StatusOK, runResponse(*run))
}

func runResponse(run entities.PipelineRun) dto.RunResponse {
	resp := dto.RunResponse{
		ID:        run.ID.String(),
		MeetingID: run.MeetingID,
		Stage:     run.Stage,
		Status:    string(run.Status),
		StartedAt: run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	if len(run.ErrorDetail) > 0 {
		var detail interface{}
		if err := json.Unmarshal(run.ErrorDetail, &detail); err == nil {
			resp.Error = detail
		}
	}
	return resp
}

// patchPayload flattens the present patch fields next to the meeting
// id, mirroring the full upsert body.
func patchPayload(meetingID string, patch *entities.MeetingMetadataPatch) (map[string]interface{}, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	payload["id"] = meetingID
	return payload, nil
}
