package results

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

type Handler struct {
	workspaces Workspaces
	formatters FormatterFactory
}

func NewHandler(workspaces Workspaces, formatters FormatterFactory) *Handler {
	return &Handler{
		workspaces: workspaces,
		formatters: formatters,
	}
}

func (h *Handler) workspace(ctx context.Context) (*workspace.Workspace, error) {
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, entity.ErrUnauthorized
	}
	return h.workspaces.Get(ctx, identity), nil
}

// GetResults handles GET /results
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetResults")

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	snap, err := ws.Results()
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.Success(w, snap)
}

// Restart handles POST /results/restart
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RestartResults")

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	snap, err := ws.RestartRun()
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "results pipeline restarted", zap.String("run_id", snap.ID))
	response.JSON(w, http.StatusAccepted, snap)
}

// Export handles GET /results/export?format=markdown|pdf|docx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportResults")

	format, err := validator.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ws, err := h.workspace(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	project, snap, err := ws.Report()
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	f, err := h.formatters.Create(format)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	body, err := f.Format(formatter.BuildReport(project, snap))
	if err != nil {
		response.Error(ctx, w, http.StatusInternalServerError, "failed to render export", err)
		return
	}

	ctxzap.Info(ctx, "results exported",
		zap.String("format", string(format)),
		zap.String("project_id", project.ID),
		zap.Int("bytes", len(body)),
	)

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, formatter.FileName(project.Name), f.FileExtension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
