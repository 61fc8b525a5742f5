package strategy

import (
	"fmt"
	"sort"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/pkg/models"
)

// ProviderStrategy decides which provider serves an analysis request
type ProviderStrategy interface {
	Select(requested models.Provider, input models.InputType) (models.Provider, error)
	GetStrategyName() string
}

// FallbackProvider serves video when the requested provider cannot
const FallbackProvider = models.ProviderGemini

// FallbackStrategy swaps a provider without video support for FallbackProvider
type FallbackStrategy struct{}

// NewFallbackStrategy creates the default strategy
func NewFallbackStrategy() ProviderStrategy {
	return &FallbackStrategy{}
}

// Select returns requested, or FallbackProvider for video it cannot analyze.
// An empty request means FallbackProvider.
func (s *FallbackStrategy) Select(requested models.Provider, input models.InputType) (models.Provider, error) {
	if requested == "" {
		return FallbackProvider, nil
	}
	if input == models.InputVideo && !models.ProviderMeta(requested).SupportsVideo {
		return FallbackProvider, nil
	}
	return requested, nil
}

// GetStrategyName returns the strategy name
func (s *FallbackStrategy) GetStrategyName() string {
	return "fallback"
}

// StrictStrategy rejects a provider that cannot analyze the input
type StrictStrategy struct{}

// NewStrictStrategy creates a strategy that never substitutes providers
func NewStrictStrategy() ProviderStrategy {
	return &StrictStrategy{}
}

// Select returns requested unchanged or a validation error
func (s *StrictStrategy) Select(requested models.Provider, input models.InputType) (models.Provider, error) {
	if requested == "" {
		return FallbackProvider, nil
	}
	if input == models.InputVideo && !models.ProviderMeta(requested).SupportsVideo {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("%s does not support video analysis. Use %s instead.",
				models.ProviderMeta(requested).Label, models.ProviderMeta(FallbackProvider).Label), nil)
	}
	return requested, nil
}

// GetStrategyName returns the strategy name
func (s *StrictStrategy) GetStrategyName() string {
	return "strict"
}

// StrategySelector picks a strategy by name
type StrategySelector struct {
	strategies map[string]ProviderStrategy
}

// NewStrategySelector registers the built-in strategies
func NewStrategySelector() *StrategySelector {
	return &StrategySelector{
		strategies: map[string]ProviderStrategy{
			"fallback": NewFallbackStrategy(),
			"strict":   NewStrictStrategy(),
		},
	}
}

// SelectStrategy returns the named strategy; unknown names get fallback
func (s *StrategySelector) SelectStrategy(name string) ProviderStrategy {
	if st, ok := s.strategies[name]; ok {
		return st
	}
	return s.strategies["fallback"]
}

// GetAvailableStrategies returns all registered strategy names, sorted
func (s *StrategySelector) GetAvailableStrategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
