package entity

import (
	"fmt"
	"time"
)

// View is the full-screen dashboard view presented to a signed-in user.
type View string

const (
	ViewRouting       View = "routing"        // data not loaded yet
	ViewWelcome       View = "welcome"        // has projects or onboarding already completed
	ViewContinueDraft View = "continue_draft" // abandoned wizard detected on this device
	ViewOnboarding    View = "onboarding"     // wizard is active
	ViewResults       View = "results"        // generation pipeline for one project
	ViewHistory       View = "history"        // all projects
	ViewError         View = "error"          // backing services failed, reload only
)

// AllViews lists every view in declaration order.
var AllViews = []View{
	ViewRouting,
	ViewWelcome,
	ViewContinueDraft,
	ViewOnboarding,
	ViewResults,
	ViewHistory,
	ViewError,
}

// OnboardingStep is a wizard step.
type OnboardingStep string

const (
	StepWelcome  OnboardingStep = "welcome"
	StepIdea1    OnboardingStep = "idea_step1"   // idea text
	StepIdea2    OnboardingStep = "idea_step2"   // audience
	StepIdea3    OnboardingStep = "idea_step3"   // competitors, optional
	StepCreate1  OnboardingStep = "create_step1" // problem statement
	StepCreate2  OnboardingStep = "create_step2" // industry
	StepCreate3  OnboardingStep = "create_step3" // product type, fires idea suggestion
	StepPickIdea OnboardingStep = "pick_idea"
)

// OnboardingFlow is the wizard branch chosen at the welcome step.
type OnboardingFlow string

const (
	FlowHaveIdea   OnboardingFlow = "have_idea"
	FlowHelpCreate OnboardingFlow = "help_create"
)

func (f OnboardingFlow) Validate() error {
	switch f {
	case FlowHaveIdea, FlowHelpCreate:
		return nil
	default:
		return fmt.Errorf("unknown onboarding flow: %s", f)
	}
}

// FirstStep returns the step the branch starts at.
func (f OnboardingFlow) FirstStep() OnboardingStep {
	if f == FlowHelpCreate {
		return StepCreate1
	}
	return StepIdea1
}

type Industry string

const (
	IndustryFintech   Industry = "fintech"
	IndustryEdtech    Industry = "edtech"
	IndustryHealth    Industry = "health"
	IndustryAI        Industry = "ai"
	IndustryEcommerce Industry = "ecommerce"
	IndustrySaaS      Industry = "saas"
)

var Industries = []Industry{
	IndustryFintech,
	IndustryEdtech,
	IndustryHealth,
	IndustryAI,
	IndustryEcommerce,
	IndustrySaaS,
}

func (i Industry) IsValid() bool {
	for _, known := range Industries {
		if i == known {
			return true
		}
	}
	return false
}

type ProductType string

const (
	ProductSaaS        ProductType = "saas"
	ProductMarketplace ProductType = "marketplace"
	ProductMobile      ProductType = "mobile"
	ProductAgent       ProductType = "agent"
)

var ProductTypes = []ProductType{
	ProductSaaS,
	ProductMarketplace,
	ProductMobile,
	ProductAgent,
}

func (p ProductType) IsValid() bool {
	for _, known := range ProductTypes {
		if p == known {
			return true
		}
	}
	return false
}

// UserProfile is the per-user profile document.
type UserProfile struct {
	OnboardingComplete  bool      `json:"onboarding_complete"`
	LastActiveProjectID string    `json:"last_active_project_id,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Project is one validated startup idea belonging to a user.
type Project struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Idea                string    `json:"idea"`
	Audience            string    `json:"audience"`
	Competitors         string    `json:"competitors,omitempty"`
	ValidationScore     int       `json:"validation_score"`
	ExecutionConfidence int       `json:"execution_confidence"`
	LastUpdated         time.Time `json:"last_updated"`
}

// Score is the ranking key used to pick the best project.
func (p *Project) Score() int {
	return p.ValidationScore + p.ExecutionConfidence
}

// StoreSnapshot is one consistent read of a user's profile and project list.
type StoreSnapshot struct {
	Profile  *UserProfile
	Projects []*Project
}

// Identity is an authenticated caller.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Greeting returns the name shown on the welcome screen.
func (i Identity) Greeting() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if i.Email != "" {
		for idx, r := range i.Email {
			if r == '@' {
				if idx > 0 {
					return i.Email[:idx]
				}
				break
			}
		}
	}
	return "Founder"
}
