package handlers

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
)

// fieldPatch maps a free-text reply onto the field asked for by step.
func fieldPatch(step entity.OnboardingStep, text string) (entity.FieldsPatch, bool) {
	switch step {
	case entity.StepIdea1:
		return entity.FieldsPatch{Idea: &text}, true
	case entity.StepIdea2:
		return entity.FieldsPatch{Audience: &text}, true
	case entity.StepIdea3:
		return entity.FieldsPatch{Competitors: &text}, true
	case entity.StepCreate1:
		return entity.FieldsPatch{Problem: &text}, true
	default:
		return entity.FieldsPatch{}, false
	}
}

// HandleText treats a plain message as the answer to the current wizard step.
func (h *Handler) HandleText(ctx context.Context, msg *Message) {
	ctx, ws := h.workspace(ctx, msg)

	state := ws.State()
	if state.View != entity.ViewOnboarding || state.Wizard == nil {
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgUseButtons, nil)
		_ = h.showState(ctx, msg.ChatID, ws)
		return
	}

	patch, ok := fieldPatch(state.Wizard.Step, msg.Text)
	if !ok {
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgUseButtons, nil)
		return
	}
	if err := h.validator.ValidateFields(&patch); err != nil {
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgTooLong, nil)
		return
	}

	if err := h.setAndAdvance(ctx, msg.ChatID, ws, patch); err != nil {
		h.fail(ctx, msg.ChatID, ws, err)
	}
}

// setAndAdvance stores the answer and moves to the next step.
func (h *Handler) setAndAdvance(ctx context.Context, chatID int64, ws *workspace.Workspace, patch entity.FieldsPatch) error {
	if _, err := ws.UpdateFields(ctx, patch); err != nil {
		return err
	}
	if _, err := ws.Next(ctx); err != nil {
		return err
	}
	return h.showState(ctx, chatID, ws)
}
