package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/anime-shed/localens-go/internal/analyzer"
	"github.com/anime-shed/localens-go/internal/config"
	"github.com/anime-shed/localens-go/internal/factory"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/preview"
	"github.com/anime-shed/localens-go/internal/repository"
	"github.com/anime-shed/localens-go/internal/service"
	"github.com/anime-shed/localens-go/internal/session"
	"github.com/anime-shed/localens-go/internal/storage"
	"github.com/anime-shed/localens-go/internal/transport"
	"github.com/anime-shed/localens-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	backend             analyzer.Backend
	sink                storage.ReportSink
	results             repository.ResultRepository
	publisher           *observer.EventPublisher
	metrics             *observer.MetricsObserver
	registry            *prometheus.Registry
	analysisService     service.AnalysisService
	alternativesService *service.AlternativesService
	handler             http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Build dependency graph
	components := factory.NewComponentFactory(cfg)
	backend, err := components.AnalyzerFactory.CreateBackend(factory.BackendTypeFor(cfg))
	if err != nil {
		return nil, err
	}
	sink, err := components.StorageFactory.CreateStorage(factory.StorageType(cfg.ReportSink))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observer.NewMetricsObserver(registry)
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	results := repository.NewMemoryRepository(repository.DefaultCapacity)
	validator := validation.NewFileValidatorWithLimits(cfg.MaxImageSize, cfg.MaxVideoSize)
	analysisService := service.NewAnalysisService(backend, validator, results, publisher)
	alternativesService := service.NewAlternativesService(backend, publisher, cfg.Workers)
	results.OnRemove(alternativesService.ForgetResult)

	handler := transport.NewHandler(transport.Deps{
		Analysis:     analysisService,
		Alternatives: alternativesService,
		Results:      results,
		Sink:         sink,
		Publisher:    publisher,
		Gatherer:     registry,
	}, cfg)

	return &Container{
		config:              cfg,
		backend:             backend,
		sink:                sink,
		results:             results,
		publisher:           publisher,
		metrics:             metrics,
		registry:            registry,
		analysisService:     analysisService,
		alternativesService: alternativesService,
		handler:             handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the in-process event summary
func (c *Container) Metrics() map[string]interface{} {
	return c.metrics.GetMetrics()
}

// NewSession creates a result view session that reports to the container's
// observers and uses the configured seek timeout
func (c *Container) NewSession(revoker preview.Revoker) *session.Session {
	return session.New(session.Options{
		SeekTimeout: c.config.SeekTimeout,
		Revoker:     revoker,
		Publisher:   c.publisher,
	})
}

// Close waits for pending event notifications
func (c *Container) Close() {
	c.publisher.Wait()
}
