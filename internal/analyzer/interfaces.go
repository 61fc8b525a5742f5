package analyzer

import (
	"context"

	"github.com/anime-shed/localens-go/pkg/models"
)

// Analyzer produces localization issues for uploaded media
type Analyzer interface {
	Analyze(ctx context.Context, files []models.Upload, provider models.Provider, inputType models.InputType) (*models.AnalysisResult, error)
}

// AlternativesGenerator proposes shorter replacements for a localized string
type AlternativesGenerator interface {
	GenerateAlternatives(ctx context.Context, originalText, language string) ([]string, error)
}

// Backend is an analysis backend that also generates alternatives.
// The remote API client and the mock generator both satisfy it.
type Backend interface {
	Analyzer
	AlternativesGenerator
}
