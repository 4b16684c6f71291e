package project

import (
	"math/rand/v2"
	"strings"

	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

// FallbackName is used when the idea has no "name: description" prefix.
const FallbackName = "My Stealth Startup"

// DeriveName takes the text before the first colon of the idea.
func DeriveName(idea string) string {
	prefix, _, found := strings.Cut(idea, ":")
	if !found {
		return FallbackName
	}
	if name := strings.TrimSpace(prefix); name != "" {
		return name
	}
	return FallbackName
}

// RandomScorer returns base + [0, spread) for both scores.
type RandomScorer struct {
	ValidationBase, ValidationSpread int
	ExecutionBase, ExecutionSpread   int
	intN                             func(n int) int
}

func (s *RandomScorer) Score(*entity.Completion) (int, int) {
	intN := s.intN
	if intN == nil {
		intN = rand.IntN
	}
	return s.ValidationBase + intN(s.ValidationSpread), s.ExecutionBase + intN(s.ExecutionSpread)
}

// FixedScorer always returns the configured bases.
type FixedScorer struct {
	Validation, Execution int
}

func (s *FixedScorer) Score(*entity.Completion) (int, int) {
	return s.Validation, s.Execution
}

func NewScorer(cfg config.ScoringConfig) Scorer {
	if cfg.Mode == config.ScoringModeFixed {
		return &FixedScorer{Validation: cfg.ValidationBase, Execution: cfg.ExecutionBase}
	}
	return &RandomScorer{
		ValidationBase:   cfg.ValidationBase,
		ValidationSpread: cfg.ValidationSpread,
		ExecutionBase:    cfg.ExecutionBase,
		ExecutionSpread:  cfg.ExecutionSpread,
	}
}
