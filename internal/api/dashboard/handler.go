package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	dashboarduc "github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
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

// GetDashboard handles GET /dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetDashboard")

	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		response.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}

	state := h.workspaces.Get(ctx, identity).State()
	ctxzap.Debug(ctx, "dashboard state served", zap.String("view", string(state.View)))

	response.Success(w, state)
}

// PostEvent handles POST /dashboard/events
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PostDashboardEvent")

	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		response.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}

	var req entity.DashboardEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidateEvent(&req); err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ev, err := dashboarduc.ParseUserEvent(req.Event)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	state, err := h.workspaces.Get(ctx, identity).Dispatch(ctx, ev, req.ProjectID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.Success(w, state)
}

// ListProjects handles GET /projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListProjects")

	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		response.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}

	projects := h.workspaces.Get(ctx, identity).State().Projects
	summaries := make([]*entity.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, toProjectSummary(p))
	}

	ctxzap.Info(ctx, "projects listed successfully", zap.Int("count", len(summaries)))

	response.Success(w, &entity.ListProjectsResponse{Projects: summaries})
}

// DropWorkspace handles DELETE /workspace
func (h *Handler) DropWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DropWorkspace")

	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		response.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}

	h.workspaces.Drop(identity.UserID)
	ctxzap.Info(ctx, "workspace dropped")

	response.NoContent(w)
}
