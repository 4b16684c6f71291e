package entity

import "fmt"

// FocusType selects the roadmap flavour.
type FocusType string

const (
	FocusWeb    FocusType = "web"
	FocusMobile FocusType = "mobile"
	FocusSaaS   FocusType = "saas"
)

func (f FocusType) Validate() error {
	switch f {
	case FocusWeb, FocusMobile, FocusSaaS:
		return nil
	default:
		return fmt.Errorf("unknown roadmap focus: %s", f)
	}
}

// ToneType selects the marketing copy voice.
type ToneType string

const (
	ToneProfessional ToneType = "professional"
	ToneBold         ToneType = "bold"
	TonePlayful      ToneType = "playful"
)

func (t ToneType) Validate() error {
	switch t {
	case ToneProfessional, ToneBold, TonePlayful:
		return nil
	default:
		return fmt.Errorf("unknown copy tone: %s", t)
	}
}

type ValidateRequest struct {
	Idea        string  `json:"idea"`
	Audience    string  `json:"audience"`
	Competitors *string `json:"competitors,omitempty"`
}

type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type Competitor struct {
	Name        string `json:"name"`
	Positioning string `json:"positioning"`
	Advantage   string `json:"advantage"`
}

type ValidationResponse struct {
	InvestabilityScore int          `json:"investability_score"`
	Summary            string       `json:"summary"`
	SWOT               SWOT         `json:"swot"`
	Risks              []string     `json:"risks"`
	Competitors        []Competitor `json:"competitors"`
}

type RoadmapRequest struct {
	Idea  string    `json:"idea"`
	Focus FocusType `json:"focus"`
}

type RoadmapPhase struct {
	Goals          []string `json:"goals"`
	Features       []string `json:"features"`
	SuccessMetrics []string `json:"success_metrics"`
}

type RoadmapResponse struct {
	StrategicSummary   *string      `json:"strategic_summary,omitempty"`
	Week1              RoadmapPhase `json:"week_1"`
	Month1             RoadmapPhase `json:"month_1"`
	Quarter1           RoadmapPhase `json:"quarter_1"`
	SuggestedTechStack []string     `json:"suggested_tech_stack"`
	RisksToWatch       []string     `json:"risks_to_watch"`
}

type CopyRequest struct {
	Idea     string   `json:"idea"`
	Audience string   `json:"audience"`
	Tone     ToneType `json:"tone"`
}

type CopyResponse struct {
	HeroHeadline string   `json:"hero_headline"`
	Subheadline  string   `json:"subheadline"`
	ValueProps   []string `json:"value_props"`
	CTA          string   `json:"cta"`
	PitchScript  string   `json:"pitch_script"`
}

type SuggestIdeasRequest struct {
	Problem     string      `json:"problem"`
	Industry    Industry    `json:"industry"`
	ProductType ProductType `json:"product_type"`
}

type IdeaSuggestion struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Audience               string `json:"audience"`
	UniqueValueProposition string `json:"unique_value_proposition"`
}

type SuggestIdeasResponse struct {
	Ideas []IdeaSuggestion `json:"ideas"`
}

// GenerationErrorBody is the error envelope of the generation backend.
type GenerationErrorBody struct {
	Detail string `json:"detail"`
}
