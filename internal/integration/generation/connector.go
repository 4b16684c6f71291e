package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	pkghttp "github.com/launchpad-labs/copilot-backend/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to the generation backend. Calls are never retried:
// every request is an LLM generation and the user restarts the flow instead.
type Connector struct {
	config    config.GenerationConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(cfg config.GenerationConnectorConfig, opts ...pkghttp.HttpOpts) *Connector {
	base := []pkghttp.HttpOpts{
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithClientKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAuthToken(cfg.Token),
	}

	return &Connector{
		connector: pkghttp.NewConnector(cfg.Url, append(base, opts...)...),
		config:    cfg,
	}
}

// Validate scores an idea and returns SWOT, risks and competitors.
func (c *Connector) Validate(ctx context.Context, req *entity.ValidateRequest) (*entity.ValidationResponse, error) {
	ctxzap.Info(ctx, "validating idea via generation service")

	var resp entity.ValidationResponse
	if err := c.post(ctx, c.config.ValidateEndpoint, req, &resp); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "idea validated",
		zap.Int("investability_score", resp.InvestabilityScore),
		zap.Int("risk_count", len(resp.Risks)),
	)

	return &resp, nil
}

// Roadmap generates week/month/quarter milestones.
func (c *Connector) Roadmap(ctx context.Context, req *entity.RoadmapRequest) (*entity.RoadmapResponse, error) {
	ctxzap.Info(ctx, "generating roadmap via generation service", zap.String("focus", string(req.Focus)))

	var resp entity.RoadmapResponse
	if err := c.post(ctx, c.config.RoadmapEndpoint, req, &resp); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "roadmap generated", zap.Int("tech_stack_size", len(resp.SuggestedTechStack)))

	return &resp, nil
}

// Copy generates landing page copy and a pitch script.
func (c *Connector) Copy(ctx context.Context, req *entity.CopyRequest) (*entity.CopyResponse, error) {
	ctxzap.Info(ctx, "generating copy via generation service", zap.String("tone", string(req.Tone)))

	var resp entity.CopyResponse
	if err := c.post(ctx, c.config.CopyEndpoint, req, &resp); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "copy generated", zap.Int("value_props", len(resp.ValueProps)))

	return &resp, nil
}

// SuggestIdeas proposes startup ideas for a problem, industry and product type.
func (c *Connector) SuggestIdeas(ctx context.Context, req *entity.SuggestIdeasRequest) (*entity.SuggestIdeasResponse, error) {
	ctxzap.Info(ctx, "suggesting ideas via generation service",
		zap.String("industry", string(req.Industry)),
		zap.String("product_type", string(req.ProductType)),
	)

	var resp entity.SuggestIdeasResponse
	if err := c.post(ctx, c.config.SuggestIdeasEndpoint, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Ideas) == 0 {
		return nil, &entity.GenerationError{Detail: "No ideas were generated"}
	}

	ctxzap.Info(ctx, "ideas suggested", zap.Int("count", len(resp.Ideas)))

	return &resp, nil
}

// Health checks that the generation backend answers.
func (c *Connector) Health(ctx context.Context) error {
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.HealthEndpoint, nil, nil)
	if err != nil {
		return translateError(ctx, err)
	}
	return nil
}

func (c *Connector) post(ctx context.Context, endpoint string, req, resp any) error {
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, resp); err != nil {
		err = translateError(ctx, err)
		ctxzap.Warn(ctx, "generation request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return err
	}
	return nil
}

// translateError maps transport errors onto entity.GenerationError so callers
// only see the user-facing message. Cancellation is passed through untouched.
func translateError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		detail := httpErr.Status
		var body entity.GenerationErrorBody
		if json.Unmarshal(httpErr.Body, &body) == nil && strings.TrimSpace(body.Detail) != "" {
			detail = body.Detail
		}
		if detail == "" {
			detail = fmt.Sprintf("API error %d", httpErr.StatusCode)
		}
		return &entity.GenerationError{StatusCode: httpErr.StatusCode, Detail: detail}
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return &entity.GenerationError{Detail: "Failed to reach the generation service"}
	}

	return &entity.GenerationError{Detail: fmt.Sprintf("Unexpected response from the generation service: %v", err)}
}
