package entity

import "errors"

// Domain errors
var (
	// Store errors
	ErrProjectNotFound     = errors.New("project not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrServicesUnavailable = errors.New("backing services unavailable")

	// Dashboard / wizard errors
	ErrInvalidTransition = errors.New("invalid view transition")
	ErrGuardFailed       = errors.New("step requirements not met")
	ErrWrongStep         = errors.New("action not allowed on current step")
	ErrSuggestionIndex   = errors.New("suggestion index out of range")
	ErrWizardClosed      = errors.New("wizard is closed")
	ErrWizardBusy        = errors.New("wizard is generating ideas")

	// Pipeline errors
	ErrGenerationFailed = errors.New("generation request failed")
	ErrNoActiveRun      = errors.New("no results run for current view")
	ErrRunNotComplete   = errors.New("results run is not complete")

	// Access errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrWorkspaceClosed   = errors.New("workspace is closed")
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DefaultGenerationMessage is shown when a generation failure carries no detail.
const DefaultGenerationMessage = "Something went wrong during generation"

// GenerationError is a failed call to the generation backend.
type GenerationError struct {
	StatusCode int    // 0 for network failures
	Detail     string // backend detail or HTTP status text
}

func (e *GenerationError) Error() string {
	if e.Detail == "" {
		return DefaultGenerationMessage
	}
	return e.Detail
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// GenerationMessage extracts the user-facing message of a generation failure.
func GenerationMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Error()
	}
	return DefaultGenerationMessage
}
