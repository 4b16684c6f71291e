package entity

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// OnboardingFields are the ephemeral wizard inputs.
type OnboardingFields struct {
	Idea        string      `json:"idea"`
	Audience    string      `json:"audience"`
	Competitors string      `json:"competitors"`
	Problem     string      `json:"problem"`
	Industry    Industry    `json:"industry"`
	ProductType ProductType `json:"product_type"`
}

// FieldsPatch updates only the non-nil fields.
type FieldsPatch struct {
	Idea        *string      `json:"idea,omitempty"`
	Audience    *string      `json:"audience,omitempty"`
	Competitors *string      `json:"competitors,omitempty"`
	Problem     *string      `json:"problem,omitempty"`
	Industry    *Industry    `json:"industry,omitempty"`
	ProductType *ProductType `json:"product_type,omitempty"`
}

// Completion is handed from the wizard to project creation.
type Completion struct {
	Idea        string         `json:"idea"`
	Audience    string         `json:"audience"`
	Competitors string         `json:"competitors,omitempty"`
	Flow        OnboardingFlow `json:"flow"`
}

type WizardSnapshot struct {
	Step        OnboardingStep   `json:"step"`
	Flow        OnboardingFlow   `json:"flow,omitempty"`
	Fields      OnboardingFields `json:"fields"`
	CanNext     bool             `json:"can_next"`
	Generating  bool             `json:"generating"`
	Suggestions []IdeaSuggestion `json:"suggestions,omitempty"`
}

type ProjectSummary struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	ValidationScore     int    `json:"validation_score"`
	ExecutionConfidence int    `json:"execution_confidence"`
	LastUpdated         string `json:"last_updated"`
}

type ListProjectsResponse struct {
	Projects []*ProjectSummary `json:"projects"`
}

// DashboardState is the full state a client needs to render the current view.
type DashboardState struct {
	View          View            `json:"view"`
	Greeting      string          `json:"greeting"`
	Projects      []*Project      `json:"projects"`
	BestProject   *Project        `json:"best_project,omitempty"`
	IsBestProject bool            `json:"is_best_project"`
	Selected      *Project        `json:"selected_project,omitempty"`
	Draft         *Draft          `json:"draft,omitempty"`
	Wizard        *WizardSnapshot `json:"wizard,omitempty"`
	Run           *RunSnapshot    `json:"run,omitempty"`
}

type DashboardEventRequest struct {
	Event     string `json:"event"`
	ProjectID string `json:"project_id,omitempty"`
}

type ChooseFlowRequest struct {
	Flow OnboardingFlow `json:"flow"`
}

type NextStepResponse struct {
	Wizard  *WizardSnapshot `json:"wizard,omitempty"`
	Project *Project        `json:"project,omitempty"`
	View    View            `json:"view"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type UpdateKind string

const (
	UpdateView   UpdateKind = "view"
	UpdateData   UpdateKind = "data"
	UpdateWizard UpdateKind = "wizard"
	UpdateStage  UpdateKind = "stage"
)

// Update is pushed to workspace listeners.
type Update struct {
	Kind  UpdateKind  `json:"kind"`
	View  View        `json:"view"`
	Stage *StageEvent `json:"stage,omitempty"`
}

type StreamMessageType string

const (
	StreamState  StreamMessageType = "state"
	StreamUpdate StreamMessageType = "update"
)

// StreamMessage is one websocket frame. Every frame carries the full state.
type StreamMessage struct {
	Type   StreamMessageType `json:"type"`
	Update *Update           `json:"update,omitempty"`
	State  *DashboardState   `json:"state"`
}
