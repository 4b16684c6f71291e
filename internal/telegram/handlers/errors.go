package handlers

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
	// ShowState asks for the current view to be sent after the message.
	ShowState bool
}

// classifyHandlerError maps workspace errors onto what the user is told.
func classifyHandlerError(err error) *HandlerError {
	switch {
	case errors.Is(err, entity.ErrGuardFailed):
		return &HandlerError{Err: err, LogMessage: "wizard guard failed", Severity: SeverityWarning}

	case errors.Is(err, entity.ErrGenerationFailed):
		return &HandlerError{
			Err:         err,
			UserMessage: render.GenerationFailed(entity.GenerationMessage(err)),
			LogMessage:  "generation failed",
			Severity:    SeverityError,
			ShowState:   true,
		}

	case errors.Is(err, entity.ErrServicesUnavailable):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgServicesDown,
			LogMessage:  "backing services unavailable",
			Severity:    SeverityError,
		}

	case errors.Is(err, entity.ErrProjectNotFound):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgNotFound,
			LogMessage:  "project not found",
			Severity:    SeverityWarning,
			ShowState:   true,
		}

	case errors.Is(err, entity.ErrRunNotComplete):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgRunNotReady,
			LogMessage:  "run not complete",
			Severity:    SeverityWarning,
		}

	case errors.Is(err, entity.ErrInvalidTransition), errors.Is(err, entity.ErrWrongStep),
		errors.Is(err, entity.ErrWizardClosed), errors.Is(err, entity.ErrWizardBusy),
		errors.Is(err, entity.ErrNoActiveRun), errors.Is(err, entity.ErrSuggestionIndex),
		errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrWorkspaceClosed):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgStaleButton,
			LogMessage:  "action does not apply to the current view",
			Severity:    SeverityWarning,
			ShowState:   true,
		}

	case errors.Is(err, context.Canceled):
		return &HandlerError{Err: err, LogMessage: "request superseded", Severity: SeverityWarning}

	default:
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrGeneric,
			LogMessage:  "handler error",
			Severity:    SeverityError,
		}
	}
}

func logHandlerError(ctx context.Context, chatID int64, herr *HandlerError) {
	fields := []zap.Field{zap.Error(herr.Err), zap.Int64("chat_id", chatID)}
	if herr.Severity == SeverityError {
		ctxzap.Error(ctx, herr.LogMessage, fields...)
		return
	}
	ctxzap.Warn(ctx, herr.LogMessage, fields...)
}
