package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/summary"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summary"
)

// RespondResult writes a pipeline result with the status code mapped
// from the stage that failed: client errors for bad input, 422 for AI
// output that failed validation, 502 for upstream collaborators.
func RespondResult(c echo.Context, res summary.Result) error {
	return c.JSON(statusFor(res), dto.WebhookResponse{
		Success: res.Success,
		Error:   res.Error,
	})
}

func statusFor(res summary.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.FailedAt {
	case summary.StageReceivedRequest:
		return http.StatusBadRequest
	case summary.StageOutputValidated:
		return http.StatusUnprocessableEntity
	case summary.StageAIInvoked, summary.StagePersisted, summary.StageUploaded:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes an application error in the webhook response
// shape. Raw causes stay in the log, not the response.
func RespondError(c echo.Context, logger *zap.Logger, appErr errors.AppError) error {
	if appErr.Raw != nil && logger != nil {
		logger.Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.String("code", appErr.Code.String()),
			zap.Error(appErr.Raw),
		)
	}
	return c.JSON(appErr.HTTPCode, dto.WebhookResponse{
		Success: false,
		Error:   appErr.Message,
	})
}
