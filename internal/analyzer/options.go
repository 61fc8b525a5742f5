package analyzer

import "github.com/anime-shed/localens-go/pkg/models"

// AnalysisOptions configures one analysis request
type AnalysisOptions struct {
	Provider  models.Provider
	InputType models.InputType

	// Strategy names the provider selection policy: "fallback" or "strict"
	Strategy string

	// Concurrency bounds alternatives prefetching
	MaxWorkers int
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Provider:   models.ProviderGemini,
		InputType:  models.InputImage,
		Strategy:   "fallback",
		MaxWorkers: 4,
	}
}

// VideoOptions returns options for video analysis
func VideoOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.InputType = models.InputVideo
	return opts
}

// WithProvider selects the provider
func (opts AnalysisOptions) WithProvider(p models.Provider) AnalysisOptions {
	opts.Provider = p
	return opts
}

// WithInputType selects the input type
func (opts AnalysisOptions) WithInputType(t models.InputType) AnalysisOptions {
	opts.InputType = t
	return opts
}

// WithStrictProvider rejects providers that cannot handle the input instead
// of substituting one
func (opts AnalysisOptions) WithStrictProvider() AnalysisOptions {
	opts.Strategy = "strict"
	return opts
}
