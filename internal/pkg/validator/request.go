package validator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

// DefaultMaxFieldLength bounds every free-text wizard field.
const DefaultMaxFieldLength = 2000

// Validator checks API payloads before they reach a workspace.
type Validator struct {
	maxFieldLength int
}

func NewValidator(maxFieldLength int) *Validator {
	if maxFieldLength <= 0 {
		maxFieldLength = DefaultMaxFieldLength
	}
	return &Validator{maxFieldLength: maxFieldLength}
}

func (v *Validator) ValidateEvent(req *entity.DashboardEventRequest) error {
	if strings.TrimSpace(req.Event) == "" {
		return fmt.Errorf("%w: event", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateChooseFlow(req *entity.ChooseFlowRequest) error {
	if req.Flow == "" {
		return fmt.Errorf("%w: flow", entity.ErrMissingField)
	}
	if err := req.Flow.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}
	return nil
}

func (v *Validator) ValidateFields(patch *entity.FieldsPatch) error {
	texts := map[string]*string{
		"idea":        patch.Idea,
		"audience":    patch.Audience,
		"competitors": patch.Competitors,
		"problem":     patch.Problem,
	}
	for name, value := range texts {
		if value != nil && utf8.RuneCountInString(*value) > v.maxFieldLength {
			return fmt.Errorf("%w: %s longer than %d characters", entity.ErrInvalidParameter, name, v.maxFieldLength)
		}
	}

	if patch.Industry != nil && *patch.Industry != "" && !patch.Industry.IsValid() {
		return fmt.Errorf("%w: unknown industry %q", entity.ErrInvalidParameter, *patch.Industry)
	}
	if patch.ProductType != nil && *patch.ProductType != "" && !patch.ProductType.IsValid() {
		return fmt.Errorf("%w: unknown product type %q", entity.ErrInvalidParameter, *patch.ProductType)
	}
	return nil
}

// ParseIdeaIndex parses the {index} path parameter of an idea pick.
func ParseIdeaIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: idea index %q", entity.ErrInvalidParameter, raw)
	}
	return index, nil
}

// ParseFormat reads the export format, defaulting to markdown.
func ParseFormat(raw string) (entity.ResultFormat, error) {
	if raw == "" {
		return entity.FormatMarkdown, nil
	}
	format := entity.ResultFormat(strings.ToLower(raw))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, raw)
	}
	return format, nil
}
