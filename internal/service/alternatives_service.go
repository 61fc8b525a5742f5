package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/anime-shed/localens-go/internal/analyzer"
	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/pkg/models"
)

// AlternativesService fetches replacement strings for issues. Each issue is
// fetched at most once until Regenerate replaces its alternatives.
type AlternativesService struct {
	gen     analyzer.AlternativesGenerator
	pub     observer.Subject
	workers int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]string
}

// NewAlternativesService creates a service backed by gen. workers bounds
// Prefetch concurrency; non-positive means 4.
func NewAlternativesService(gen analyzer.AlternativesGenerator, pub observer.Subject, workers int) *AlternativesService {
	if workers <= 0 {
		workers = 4
	}
	return &AlternativesService{
		gen:     gen,
		pub:     pub,
		workers: workers,
		cache:   make(map[string][]string),
	}
}

// Get returns the issue's alternatives, fetching them on first use.
// Alternatives already carried by the issue count as fetched.
func (s *AlternativesService) Get(ctx context.Context, issue models.Issue) ([]string, error) {
	if len(issue.AlternativeTexts) > 0 {
		return issue.AlternativeTexts, nil
	}
	if alts, ok := s.cached(issue.ID); ok {
		return alts, nil
	}

	v, err, _ := s.group.Do(issue.ID, func() (interface{}, error) {
		if alts, ok := s.cached(issue.ID); ok {
			return alts, nil
		}
		return s.fetch(ctx, issue)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Regenerate fetches fresh alternatives and replaces any stored ones
func (s *AlternativesService) Regenerate(ctx context.Context, issue models.Issue) ([]string, error) {
	return s.fetch(ctx, issue)
}

// Prefetch loads alternatives for every issue on a worker pool. Failures are
// logged and skipped; the returned map holds what succeeded.
func (s *AlternativesService) Prefetch(ctx context.Context, issues []models.Issue) map[string][]string {
	pool := analyzer.NewWorkerPool(s.workers)
	pool.Start()
	defer pool.Close()

	var mu sync.Mutex
	out := make(map[string][]string, len(issues))
	for _, is := range issues {
		is := is
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			alts, err := s.Get(ctx, is)
			if err != nil {
				logger.WithError(err).WithField("issue_id", is.ID).Warn("Prefetching alternatives failed")
				return
			}
			mu.Lock()
			out[is.ID] = alts
			mu.Unlock()
		})
	}
	pool.Wait()
	return out
}

// ResultIssueID scopes an issue id to the stored result it belongs to.
// Issue ids repeat across results.
func ResultIssueID(resultID, issueID string) string {
	return resultID + "/" + issueID
}

// Forget drops stored alternatives whose issue id starts with prefix.
// An empty prefix drops everything, for example when a new result loads.
func (s *AlternativesService) Forget(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		s.cache = make(map[string][]string)
		return
	}
	for id := range s.cache {
		if strings.HasPrefix(id, prefix) {
			delete(s.cache, id)
		}
	}
}

// ForgetResult drops the alternatives of every issue of a stored result
func (s *AlternativesService) ForgetResult(resultID string) {
	s.Forget(ResultIssueID(resultID, ""))
}

// Cached returns stored alternatives without fetching
func (s *AlternativesService) Cached(issueID string) ([]string, bool) {
	return s.cached(issueID)
}

func (s *AlternativesService) cached(id string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alts, ok := s.cache[id]
	return alts, ok
}

// Generate asks the backend for alternatives to text without touching the
// per-issue cache
func (s *AlternativesService) Generate(ctx context.Context, text, language string) ([]string, error) {
	return s.generate(ctx, "", text, language)
}

func (s *AlternativesService) fetch(ctx context.Context, issue models.Issue) ([]string, error) {
	alts, err := s.generate(ctx, issue.ID, issue.SourceText(), issue.Language)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[issue.ID] = alts
	s.mu.Unlock()
	return alts, nil
}

func (s *AlternativesService) generate(ctx context.Context, issueID, text, language string) ([]string, error) {
	if text == "" {
		return nil, apperrors.NewValidationError("Issue has no text to shorten.", nil)
	}

	meta := map[string]interface{}{"language": language}
	if issueID != "" {
		meta["issue_id"] = issueID
	}
	alts, err := s.gen.GenerateAlternatives(ctx, text, language)
	if err != nil {
		s.notify(ctx, observer.Event{
			EventType:    observer.AlternativesFailed,
			ErrorMessage: apperrors.UserMessage(err),
			Metadata:     meta,
		})
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"issue_id": issueID,
		"language": language,
		"count":    len(alts),
	}).Debug("Alternatives generated")
	s.notify(ctx, observer.Event{
		EventType: observer.AlternativesGenerated,
		Success:   true,
		Metadata:  meta,
	})
	return alts, nil
}

func (s *AlternativesService) notify(ctx context.Context, event observer.Event) {
	if s.pub != nil {
		s.pub.NotifyObservers(ctx, event)
	}
}

// RankAlternatives orders candidates shortest first, breaking ties by edit
// distance to the original so the closest wording wins. Input is not modified.
func RankAlternatives(original string, alts []string) []string {
	out := make([]string, len(alts))
	copy(out, alts)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li < lj
		}
		return levenshtein.Distance(original, out[i]) < levenshtein.Distance(original, out[j])
	})
	return out
}
