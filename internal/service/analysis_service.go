package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/localens-go/internal/analyzer"
	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/repository"
	"github.com/anime-shed/localens-go/internal/strategy"
	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/validation"
)

// AnalysisService validates uploads and runs them through an analysis backend
type AnalysisService interface {
	Analyze(ctx context.Context, files []models.Upload, options analyzer.AnalysisOptions) (*models.AnalysisResult, error)
	AnalyzeAndStore(ctx context.Context, files []models.Upload, options analyzer.AnalysisOptions) (string, *models.AnalysisResult, error)
}

type analysisService struct {
	backend    analyzer.Analyzer
	validator  *validation.FileValidator
	strategies *strategy.StrategySelector
	results    repository.ResultRepository
	pub        observer.Subject
}

// NewAnalysisService creates a new analysis service. results and pub may be nil.
func NewAnalysisService(
	backend analyzer.Analyzer,
	validator *validation.FileValidator,
	results repository.ResultRepository,
	pub observer.Subject,
) AnalysisService {
	if validator == nil {
		validator = validation.NewFileValidator()
	}
	return &analysisService{
		backend:    backend,
		validator:  validator,
		strategies: strategy.NewStrategySelector(),
		results:    results,
		pub:        pub,
	}
}

// Analyze checks files, settles the provider and calls the backend. The
// input type follows the files when they can be classified.
func (s *analysisService) Analyze(ctx context.Context, files []models.Upload, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	inputType, err := s.validator.Validate(files, options.InputType)
	if err != nil {
		s.notify(ctx, observer.Event{
			EventType:    observer.AnalysisFailed,
			Provider:     string(options.Provider),
			InputType:    string(options.InputType),
			FileCount:    len(files),
			ErrorMessage: apperrors.UserMessage(err),
		})
		return nil, err
	}

	provider, err := s.strategies.SelectStrategy(options.Strategy).Select(options.Provider, inputType)
	if err != nil {
		s.notify(ctx, observer.Event{
			EventType:    observer.AnalysisFailed,
			Provider:     string(options.Provider),
			InputType:    string(inputType),
			FileCount:    len(files),
			ErrorMessage: apperrors.UserMessage(err),
		})
		return nil, err
	}
	if provider != options.Provider && options.Provider != "" {
		logger.WithFields(logrus.Fields{
			"requested": options.Provider,
			"provider":  provider,
		}).Info("Provider does not support video; falling back")
	}

	s.notify(ctx, observer.Event{
		EventType: observer.AnalysisStarted,
		Provider:  string(provider),
		InputType: string(inputType),
		FileCount: len(files),
	})

	start := time.Now()
	result, err := s.backend.Analyze(ctx, files, provider, inputType)
	elapsed := time.Since(start)
	if err != nil {
		s.notify(ctx, observer.Event{
			EventType:      observer.AnalysisFailed,
			Provider:       string(provider),
			InputType:      string(inputType),
			FileCount:      len(files),
			ProcessingTime: elapsed,
			ErrorMessage:   apperrors.UserMessage(err),
		})
		return nil, err
	}
	if result == nil {
		return nil, apperrors.NewProcessingError("Analysis backend returned no result", nil)
	}

	s.notify(ctx, observer.Event{
		EventType:      observer.AnalysisCompleted,
		Provider:       result.Provider,
		InputType:      result.InputType,
		FileCount:      len(result.Results),
		IssueCount:     len(result.AllIssues()),
		ProcessingTime: elapsed,
		Success:        true,
	})
	return result, nil
}

// AnalyzeAndStore runs Analyze and keeps the result for later lookups
func (s *analysisService) AnalyzeAndStore(ctx context.Context, files []models.Upload, options analyzer.AnalysisOptions) (string, *models.AnalysisResult, error) {
	result, err := s.Analyze(ctx, files, options)
	if err != nil {
		return "", nil, err
	}
	if s.results == nil {
		return "", result, nil
	}
	id, err := s.results.Save(ctx, result)
	if err != nil {
		return "", nil, apperrors.NewInternalError("Failed to store analysis result", err)
	}
	return id, result, nil
}

func (s *analysisService) notify(ctx context.Context, event observer.Event) {
	if s.pub != nil {
		s.pub.NotifyObservers(ctx, event)
	}
}
