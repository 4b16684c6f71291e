package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/keyboard"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

// HandleCallback handles inline button presses.
func (h *Handler) HandleCallback(ctx context.Context, msg *Message) {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err), zap.String("data", msg.CallbackData))
		h.sender.Answer(ctx, msg.CallbackID, render.ErrInvalidButton)
		return
	}

	ctx, ws := h.workspace(ctx, msg)
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.String("callback_action", data.Action),
		zap.String("callback_value", data.Value),
	))

	// Answer first so Telegram stops the button spinner during slow calls.
	h.sender.Answer(ctx, msg.CallbackID, "")

	if err := h.applyCallback(ctx, msg.ChatID, ws, data); err != nil {
		h.fail(ctx, msg.ChatID, ws, err)
		return
	}
}

func (h *Handler) applyCallback(ctx context.Context, chatID int64, ws *workspace.Workspace, data *keyboard.CallbackData) error {
	switch data.Action {
	case keyboard.ActionEvent:
		ev, err := dashboard.ParseUserEvent(data.Value)
		if err != nil {
			return err
		}
		if _, err := ws.Dispatch(ctx, ev, ""); err != nil {
			return err
		}

	case keyboard.ActionProject:
		if _, err := ws.Dispatch(ctx, dashboard.EventContinueProject, data.Value); err != nil {
			return err
		}

	case keyboard.ActionFlow:
		flow := entity.OnboardingFlow(data.Value)
		if err := flow.Validate(); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
		}
		if _, err := ws.ChooseFlow(flow); err != nil {
			return err
		}

	case keyboard.ActionIndustry:
		industry := entity.Industry(data.Value)
		if !industry.IsValid() {
			return fmt.Errorf("%w: industry %q", entity.ErrInvalidParameter, data.Value)
		}
		return h.setAndAdvance(ctx, chatID, ws, entity.FieldsPatch{Industry: &industry})

	case keyboard.ActionProduct:
		product := entity.ProductType(data.Value)
		if !product.IsValid() {
			return fmt.Errorf("%w: product type %q", entity.ErrInvalidParameter, data.Value)
		}
		_ = h.sender.Send(ctx, chatID, render.MsgGenerating, nil)
		h.sender.Typing(chatID)
		return h.setAndAdvance(ctx, chatID, ws, entity.FieldsPatch{ProductType: &product})

	case keyboard.ActionWizard:
		switch data.Value {
		case keyboard.WizardNext:
			if _, err := ws.Next(ctx); err != nil {
				return err
			}
		case keyboard.WizardBack:
			if _, err := ws.Back(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: wizard action %q", entity.ErrInvalidParameter, data.Value)
		}

	case keyboard.ActionIdea:
		index, err := strconv.Atoi(data.Value)
		if err != nil {
			return fmt.Errorf("%w: idea index %q", entity.ErrInvalidParameter, data.Value)
		}
		if _, err := ws.SelectIdea(ctx, index); err != nil {
			return err
		}

	case keyboard.ActionRestart:
		if _, err := ws.RestartRun(); err != nil {
			return err
		}

	case keyboard.ActionExport:
		return h.export(ctx, chatID, ws, entity.ResultFormat(data.Value))

	default:
		return fmt.Errorf("%w: callback action %q", entity.ErrInvalidParameter, data.Action)
	}

	return h.showState(ctx, chatID, ws)
}

func (h *Handler) export(ctx context.Context, chatID int64, ws *workspace.Workspace, format entity.ResultFormat) error {
	f, err := h.formatters.Create(format)
	if err != nil {
		return err
	}

	project, run, err := ws.Report()
	if err != nil {
		return err
	}

	_ = h.sender.Send(ctx, chatID, render.MsgExporting, nil)

	data, err := f.Format(formatter.BuildReport(project, run))
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}

	name := formatter.FileName(project.Name) + f.FileExtension()
	if err := h.sender.SendDocument(ctx, chatID, name, data); err != nil {
		return err
	}

	ctxzap.Info(ctx, "results exported", zap.String("format", string(format)), zap.Int("bytes", len(data)))
	return nil
}
