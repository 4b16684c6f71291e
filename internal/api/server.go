package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	dashboardapi "github.com/launchpad-labs/copilot-backend/internal/api/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/api/docs"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	onboardingapi "github.com/launchpad-labs/copilot-backend/internal/api/onboarding"
	resultsapi "github.com/launchpad-labs/copilot-backend/internal/api/results"
	streamapi "github.com/launchpad-labs/copilot-backend/internal/api/stream"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handlers struct {
	Dashboard  *dashboardapi.Handler
	Onboarding *onboardingapi.Handler
	Results    *resultsapi.Handler
	Stream     *streamapi.Handler
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 5 * time.Second

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	verifier middleware.TokenVerifier,
	checks map[string]HealthCheck,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id", "X-User-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(checks))
	docs.RegisterRoutes(r, cfg.SwaggerSpecPath)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(verifier))

		// The stream outlives any request timeout.
		streamapi.RegisterRoutes(r, handlers.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

			dashboardapi.RegisterRoutes(r, handlers.Dashboard)
			onboardingapi.RegisterRoutes(r, handlers.Onboarding)
			resultsapi.RegisterRoutes(r, handlers.Results)
		})
	})

	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "healthy", Services: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Services[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Services[name] = "ok"
		}

		response.JSON(w, status, resp)
	}
}
