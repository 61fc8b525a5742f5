package factory

import (
	"fmt"
	"time"

	"github.com/anime-shed/localens-go/internal/analyzer"
	"github.com/anime-shed/localens-go/internal/apiclient"
	"github.com/anime-shed/localens-go/internal/config"
	"github.com/anime-shed/localens-go/internal/mockdata"
	"github.com/anime-shed/localens-go/internal/storage"
)

// BackendType represents the analysis backends
type BackendType string

const (
	// MockBackend fabricates results locally
	MockBackend BackendType = "mock"
	// RemoteBackend calls the analysis HTTP API
	RemoteBackend BackendType = "remote"
)

// StorageType represents the report sinks
type StorageType string

const (
	// HTTPStorage PUTs reports to a web server
	HTTPStorage StorageType = config.SinkHTTP
	// AzureStorage uploads reports to a blob container
	AzureStorage StorageType = config.SinkAzure
	// LocalStorage writes reports to a directory
	LocalStorage StorageType = config.SinkLocal
)

// BackendTypeFor picks the backend cfg asks for
func BackendTypeFor(cfg *config.Config) BackendType {
	if cfg.UseMock {
		return MockBackend
	}
	return RemoteBackend
}

// AnalyzerFactory creates analysis backends
type AnalyzerFactory interface {
	CreateBackend(backendType BackendType) (analyzer.Backend, error)
}

// StorageFactory creates report sinks
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ReportSink, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	cfg *config.Config
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{cfg: cfg}
}

// CreateBackend creates a backend based on the specified type
func (f *analyzerFactory) CreateBackend(backendType BackendType) (analyzer.Backend, error) {
	switch backendType {
	case MockBackend:
		return mockdata.NewGenerator(nil), nil
	case RemoteBackend:
		client, err := apiclient.New(apiclient.Config{
			BaseURL:  f.cfg.APIBase,
			Attempts: f.cfg.APIRetryCount,
			Timeout:  f.cfg.AnalysisTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("analysis API client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a sink based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ReportSink, error) {
	var (
		sink storage.ReportSink
		err  error
	)
	switch storageType {
	case HTTPStorage:
		sink, err = storage.NewHTTPSink(f.cfg.ReportURL, time.Second)
	case AzureStorage:
		sink, err = storage.NewAzureSink(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.AzureReportContainer)
	case LocalStorage:
		sink, err = storage.NewLocalSink(f.cfg.ReportDir)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s report sink: %w", storageType, err)
	}
	return sink, nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
