package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector returns canned payloads shaped like the real backend.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Validate(ctx context.Context, req *entity.ValidateRequest) (*entity.ValidationResponse, error) {
	ctxzap.Info(ctx, "[MOCK] validating idea", zap.Int("idea_length", len(req.Idea)))

	competitors := []entity.Competitor{
		{Name: "Incumbent Co", Positioning: "Enterprise suite", Advantage: "Distribution"},
	}
	if req.Competitors != nil && strings.TrimSpace(*req.Competitors) != "" {
		for _, name := range strings.Split(*req.Competitors, ",") {
			if name = strings.TrimSpace(name); name != "" {
				competitors = append(competitors, entity.Competitor{
					Name:        name,
					Positioning: "Named by founder",
					Advantage:   "Existing users",
				})
			}
		}
	}

	return &entity.ValidationResponse{
		InvestabilityScore: 72,
		Summary:            fmt.Sprintf("Promising idea for %s with a clear wedge.", req.Audience),
		SWOT: entity.SWOT{
			Strengths:     []string{"Focused audience", "Simple onboarding"},
			Weaknesses:    []string{"No brand yet"},
			Opportunities: []string{"Underserved niche", "AI-assisted workflows"},
			Threats:       []string{"Fast followers"},
		},
		Risks:       []string{"Customer acquisition cost", "Retention after trial"},
		Competitors: competitors,
	}, nil
}

func (m *MockConnector) Roadmap(ctx context.Context, req *entity.RoadmapRequest) (*entity.RoadmapResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating roadmap", zap.String("focus", string(req.Focus)))

	summary := "Ship a narrow MVP, then expand along the strongest usage signal."
	return &entity.RoadmapResponse{
		StrategicSummary: &summary,
		Week1: entity.RoadmapPhase{
			Goals:          []string{"Interview 10 potential users"},
			Features:       []string{"Landing page with waitlist"},
			SuccessMetrics: []string{"50 waitlist signups"},
		},
		Month1: entity.RoadmapPhase{
			Goals:          []string{"Launch MVP to the waitlist"},
			Features:       []string{"Core workflow", "Email onboarding"},
			SuccessMetrics: []string{"20 weekly active users"},
		},
		Quarter1: entity.RoadmapPhase{
			Goals:          []string{"Reach first paying customers"},
			Features:       []string{"Billing", "Team accounts"},
			SuccessMetrics: []string{"$1k MRR"},
		},
		SuggestedTechStack: []string{"Go", "PostgreSQL", "React"},
		RisksToWatch:       []string{"Scope creep"},
	}, nil
}

func (m *MockConnector) Copy(ctx context.Context, req *entity.CopyRequest) (*entity.CopyResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating copy", zap.String("tone", string(req.Tone)))

	return &entity.CopyResponse{
		HeroHeadline: "Stop guessing. Start shipping.",
		Subheadline:  fmt.Sprintf("Built for %s who want results this week.", req.Audience),
		ValueProps:   []string{"Set up in minutes", "No spreadsheets", "Cancel anytime"},
		CTA:          "Join the waitlist",
		PitchScript:  "We help " + req.Audience + " get there faster.",
	}, nil
}

func (m *MockConnector) SuggestIdeas(ctx context.Context, req *entity.SuggestIdeasRequest) (*entity.SuggestIdeasResponse, error) {
	ctxzap.Info(ctx, "[MOCK] suggesting ideas",
		zap.String("industry", string(req.Industry)),
		zap.String("product_type", string(req.ProductType)),
	)

	return &entity.SuggestIdeasResponse{
		Ideas: []entity.IdeaSuggestion{
			{
				Title:                  fmt.Sprintf("%s copilot", strings.ToUpper(string(req.Industry))),
				Description:            "An assistant that removes the busywork behind " + req.Problem,
				Audience:               "small teams",
				UniqueValueProposition: "Works out of the box",
			},
			{
				Title:                  fmt.Sprintf("%s marketplace", req.ProductType),
				Description:            "Connects people facing " + req.Problem + " with vetted experts",
				Audience:               "independent professionals",
				UniqueValueProposition: "Curated supply",
			},
		},
	}, nil
}

func (m *MockConnector) Health(ctx context.Context) error {
	return nil
}
