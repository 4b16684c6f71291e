package onboarding

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

type Handler struct {
	workspaces Workspaces
	validator  *validator.Validator
}

func NewHandler(workspaces Workspaces, validator *validator.Validator) *Handler {
	return &Handler{
		workspaces: workspaces,
		validator:  validator,
	}
}

func (h *Handler) workspace(ctx context.Context) (*workspace.Workspace, error) {
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, entity.ErrUnauthorized
	}
	return h.workspaces.Get(ctx, identity), nil
}

// ChooseFlow handles POST /onboarding/flow
func (h *Handler) ChooseFlow(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ChooseFlow")

	var req entity.ChooseFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidateChooseFlow(&req); err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	snap, err := ws.ChooseFlow(req.Flow)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "onboarding flow chosen", zap.String("flow", string(req.Flow)))
	response.Success(w, snap)
}

// UpdateFields handles PUT /onboarding/fields
func (h *Handler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UpdateFields")

	var patch entity.FieldsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidateFields(&patch); err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	snap, err := ws.UpdateFields(ctx, patch)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.Success(w, snap)
}

// Next handles POST /onboarding/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "NextStep")

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	resp, err := ws.Next(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	if resp.Project != nil {
		response.JSON(w, http.StatusCreated, resp)
		return
	}
	response.Success(w, resp)
}

// Back handles POST /onboarding/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StepBack")

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	state, err := ws.Back()
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.Success(w, state)
}

// SelectIdea handles POST /onboarding/ideas/{index}
func (h *Handler) SelectIdea(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SelectIdea")

	index, err := validator.ParseIdeaIndex(chi.URLParam(r, "index"))
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	resp, err := ws.SelectIdea(ctx, index)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "suggested idea selected", zap.Int("index", index), zap.String("project_id", resp.Project.ID))
	response.JSON(w, http.StatusCreated, resp)
}
