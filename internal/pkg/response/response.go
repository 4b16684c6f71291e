package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error logs err and writes an error response
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	fields := []zap.Field{zap.Int("status", status)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, fields...)
	} else {
		ctxzap.Info(ctx, message, fields...)
	}

	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// FromError maps domain errors onto HTTP statuses
func FromError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		Error(ctx, w, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, entity.ErrProjectNotFound), errors.Is(err, entity.ErrProfileNotFound):
		Error(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrUnsupportedFormat), errors.Is(err, entity.ErrSuggestionIndex):
		Error(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrGuardFailed):
		Error(ctx, w, http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, entity.ErrGenerationFailed):
		Error(ctx, w, http.StatusBadGateway, entity.GenerationMessage(err), err)
	case errors.Is(err, entity.ErrServicesUnavailable):
		Error(ctx, w, http.StatusServiceUnavailable, "backing services unavailable", err)
	case errors.Is(err, entity.ErrInvalidTransition), errors.Is(err, entity.ErrWrongStep),
		errors.Is(err, entity.ErrWizardClosed), errors.Is(err, entity.ErrWizardBusy),
		errors.Is(err, entity.ErrNoActiveRun), errors.Is(err, entity.ErrRunNotComplete),
		errors.Is(err, entity.ErrWorkspaceClosed):
		Error(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, context.Canceled):
		Error(ctx, w, http.StatusConflict, "request was superseded", err)
	default:
		Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

// Success writes a 200 response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
