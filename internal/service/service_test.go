package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/localens-go/internal/analyzer"
	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/mockdata"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/repository"
	"github.com/anime-shed/localens-go/pkg/models"
)

type recordingBackend struct {
	mu        sync.Mutex
	provider  models.Provider
	inputType models.InputType
	err       error
	altCalls  int32
}

func (b *recordingBackend) Analyze(ctx context.Context, files []models.Upload, provider models.Provider, inputType models.InputType) (*models.AnalysisResult, error) {
	b.mu.Lock()
	b.provider, b.inputType = provider, inputType
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return mockdata.NewGenerator(mockdata.AllTemplates).Analyze(ctx, files, provider, inputType)
}

func (b *recordingBackend) GenerateAlternatives(ctx context.Context, originalText, language string) ([]string, error) {
	atomic.AddInt32(&b.altCalls, 1)
	if b.err != nil {
		return nil, b.err
	}
	return mockdata.Alternatives(language), nil
}

type eventLog struct {
	mu     sync.Mutex
	events []observer.EventType
}

func (l *eventLog) OnEvent(_ context.Context, e observer.Event) {
	l.mu.Lock()
	l.events = append(l.events, e.EventType)
	l.mu.Unlock()
}

func (l *eventLog) GetObserverName() string { return "event_log" }

func (l *eventLog) count(t observer.EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e == t {
			n++
		}
	}
	return n
}

func newPublisher() (*observer.EventPublisher, *eventLog) {
	pub := observer.NewEventPublisher()
	log := &eventLog{}
	pub.Subscribe(log)
	return pub, log
}

func TestAnalysisService_VideoFallsBackToGemini(t *testing.T) {
	backend := &recordingBackend{}
	pub, log := newPublisher()
	svc := NewAnalysisService(backend, nil, nil, pub)

	opts := analyzer.DefaultOptions().WithProvider(models.ProviderClaude)
	res, err := svc.Analyze(context.Background(), []models.Upload{
		{Filename: "trailer.mp4", ContentType: "video/mp4", Data: []byte("x")},
	}, opts)
	require.NoError(t, err)
	pub.Wait()

	// the file decides the input type, the input type decides the provider
	assert.Equal(t, models.InputVideo, backend.inputType)
	assert.Equal(t, models.ProviderGemini, backend.provider)
	assert.True(t, res.IsVideo())
	assert.Equal(t, 1, log.count(observer.AnalysisStarted))
	assert.Equal(t, 1, log.count(observer.AnalysisCompleted))
}

func TestAnalysisService_StrictRejects(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewAnalysisService(backend, nil, nil, nil)

	opts := analyzer.VideoOptions().WithProvider(models.ProviderClaude).WithStrictProvider()
	_, err := svc.Analyze(context.Background(), []models.Upload{
		{Filename: "trailer.mp4", Data: []byte("x")},
	}, opts)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, backend.provider, "backend must not be called")
}

func TestAnalysisService_ValidationFailure(t *testing.T) {
	pub, log := newPublisher()
	svc := NewAnalysisService(&recordingBackend{}, nil, nil, pub)

	_, err := svc.Analyze(context.Background(), nil, analyzer.DefaultOptions())
	require.Error(t, err)
	pub.Wait()
	assert.Equal(t, 1, log.count(observer.AnalysisFailed))
	assert.Equal(t, 0, log.count(observer.AnalysisStarted))
}

func TestAnalysisService_BackendFailure(t *testing.T) {
	backend := &recordingBackend{err: apperrors.NewAPIError("HTTP 500", 500)}
	pub, log := newPublisher()
	svc := NewAnalysisService(backend, nil, nil, pub)

	_, err := svc.Analyze(context.Background(), []models.Upload{{Filename: "a.png", Data: []byte("x")}}, analyzer.DefaultOptions())
	require.Error(t, err)
	pub.Wait()
	assert.Equal(t, "HTTP 500", apperrors.UserMessage(err))
	assert.Equal(t, 1, log.count(observer.AnalysisFailed))
}

func TestAnalysisService_AnalyzeAndStore(t *testing.T) {
	repo := repository.NewMemoryRepository(0)
	svc := NewAnalysisService(&recordingBackend{}, nil, repo, nil)

	id, res, err := svc.AnalyzeAndStore(context.Background(), []models.Upload{{Filename: "a.png", Data: []byte("x")}}, analyzer.DefaultOptions())
	require.NoError(t, err)
	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, res, stored)
}

func TestAlternativesService_FetchesOnce(t *testing.T) {
	backend := &recordingBackend{}
	pub, log := newPublisher()
	svc := NewAlternativesService(backend, pub, 2)
	issue := models.Issue{ID: "i1", Language: "de-DE", OriginalText: "Spieleinstellungen ändern"}

	first, err := svc.Get(context.Background(), issue)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), issue)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.altCalls))

	_, err = svc.Regenerate(context.Background(), issue)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.altCalls))

	pub.Wait()
	assert.Equal(t, 2, log.count(observer.AlternativesGenerated))
}

func TestAlternativesService_GenerateBypassesCache(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewAlternativesService(backend, nil, 0)

	for i := 0; i < 2; i++ {
		alts, err := svc.Generate(context.Background(), "Settings", "ja-JP")
		require.NoError(t, err)
		assert.Equal(t, mockdata.Alternatives("ja-JP"), alts)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.altCalls))
	assert.Empty(t, svc.cache)

	_, err := svc.Generate(context.Background(), "", "ja-JP")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAlternativesService_UsesCarriedAlternatives(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewAlternativesService(backend, nil, 0)
	issue := models.Issue{ID: "i1", Description: "x"}.WithAlternatives([]string{"a"})

	alts, err := svc.Get(context.Background(), issue)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, alts)
	assert.Zero(t, atomic.LoadInt32(&backend.altCalls))
}

func TestAlternativesService_Failure(t *testing.T) {
	backend := &recordingBackend{err: errors.New("boom")}
	pub, log := newPublisher()
	svc := NewAlternativesService(backend, pub, 0)

	_, err := svc.Get(context.Background(), models.Issue{ID: "i1", Description: "x"})
	require.Error(t, err)
	pub.Wait()
	assert.Equal(t, 1, log.count(observer.AlternativesFailed))

	// a failure is not cached
	backend.err = nil
	_, err = svc.Get(context.Background(), models.Issue{ID: "i1", Description: "x"})
	assert.NoError(t, err)
}

func TestAlternativesService_NoText(t *testing.T) {
	svc := NewAlternativesService(&recordingBackend{}, nil, 0)
	_, err := svc.Get(context.Background(), models.Issue{ID: "empty"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAlternativesService_Prefetch(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewAlternativesService(backend, nil, 3)
	issues := mockdata.Issues("menu.png", models.InputImage, 5)

	got := svc.Prefetch(context.Background(), issues)
	assert.Len(t, got, 5)
	assert.Equal(t, mockdata.Alternatives("zh-CN"), got["menu.png-issue-5"])
	assert.Equal(t, int32(5), atomic.LoadInt32(&backend.altCalls))

	svc.Forget("")
	_, _ = svc.Get(context.Background(), issues[0])
	assert.Equal(t, int32(6), atomic.LoadInt32(&backend.altCalls))
}

func TestAlternativesService_ForgetResult(t *testing.T) {
	ctx := context.Background()
	svc := NewAlternativesService(&recordingBackend{}, nil, 0)
	issue := mockdata.Issues("menu.png", models.InputImage, 2)[1]

	for _, resultID := range []string{"r1", "r10", "r2"} {
		scoped := issue
		scoped.ID = ResultIssueID(resultID, issue.ID)
		_, err := svc.Get(ctx, scoped)
		require.NoError(t, err)
	}

	svc.ForgetResult("r1")
	_, ok := svc.Cached("r1/menu.png-issue-2")
	assert.False(t, ok)
	_, ok = svc.Cached("r10/menu.png-issue-2")
	assert.True(t, ok, "only exact result ids are dropped")
	_, ok = svc.Cached("r2/menu.png-issue-2")
	assert.True(t, ok)
}

func TestRankAlternatives(t *testing.T) {
	in := []string{"Einstellungen", "Opt.", "Setup", "Einst."}
	got := RankAlternatives("Einstellungen ändern", in)
	assert.Equal(t, []string{"Opt.", "Setup", "Einst.", "Einstellungen"}, got)
	assert.Equal(t, "Einstellungen", in[0], "input must not be reordered")

	// equal length: closer to the original first
	assert.Equal(t, []string{"Setu", "Optn"}, RankAlternatives("Setup", []string{"Optn", "Setu"}))
}
