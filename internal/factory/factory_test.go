package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/localens-go/internal/apiclient"
	"github.com/anime-shed/localens-go/internal/config"
	"github.com/anime-shed/localens-go/internal/mockdata"
	"github.com/anime-shed/localens-go/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	cfg := &config.Config{APIBase: "http://localhost:8000/api/", APIRetryCount: 3}
	f := NewAnalyzerFactory(cfg)

	b, err := f.CreateBackend(MockBackend)
	require.NoError(t, err)
	assert.IsType(t, &mockdata.Generator{}, b)

	b, err = f.CreateBackend(RemoteBackend)
	require.NoError(t, err)
	client, ok := b.(*apiclient.Client)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8000/api", client.BaseURL())

	_, err = f.CreateBackend("grpc")
	assert.Error(t, err)

	cfg.APIBase = "not a url"
	b, err = f.CreateBackend(RemoteBackend)
	assert.Error(t, err)
	assert.Nil(t, b)
}

func TestBackendTypeFor(t *testing.T) {
	assert.Equal(t, MockBackend, BackendTypeFor(&config.Config{UseMock: true}))
	assert.Equal(t, RemoteBackend, BackendTypeFor(&config.Config{}))
}

func TestCreateStorage(t *testing.T) {
	cfg := &config.Config{
		ReportDir:            t.TempDir(),
		ReportURL:            "http://reports.local",
		AzureStorageAccount:  "devstoreaccount1",
		AzureStorageKey:      "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==",
		AzureReportContainer: "reports",
	}
	f := NewStorageFactory(cfg)

	s, err := f.CreateStorage(LocalStorage)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalSink{}, s)

	s, err = f.CreateStorage(HTTPStorage)
	require.NoError(t, err)
	assert.IsType(t, &storage.HTTPSink{}, s)

	s, err = f.CreateStorage(AzureStorage)
	require.NoError(t, err)
	assert.IsType(t, &storage.AzureSink{}, s)

	_, err = f.CreateStorage("s3")
	assert.Error(t, err)
}

func TestNewComponentFactory(t *testing.T) {
	f := NewComponentFactory(&config.Config{})
	assert.NotNil(t, f.AnalyzerFactory)
	assert.NotNil(t, f.StorageFactory)
}
