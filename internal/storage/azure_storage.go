package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
)

// AzureSink uploads reports to one Azure Blob Storage container
type AzureSink struct {
	client    *azblob.Client
	container string
}

// NewAzureSink authenticates with a shared key against the public endpoint
func NewAzureSink(accountName, accountKey, container string) (*AzureSink, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid Azure storage credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("Cannot create Azure blob client", err)
	}
	return &AzureSink{client: client, container: container}, nil
}

// NewAzureSinkFromURL uses a service URL that carries its own authorization,
// such as a SAS URL or a local emulator
func NewAzureSinkFromURL(serviceURL, container string) (*AzureSink, error) {
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("Cannot create Azure blob client", err)
	}
	return &AzureSink{client: client, container: container}, nil
}

// Put uploads data as a block blob and returns its URL
func (s *AzureSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	opts := &azblob.UploadBufferOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, opts); err != nil {
		return "", apperrors.NewNetworkError("Report upload failed", err)
	}
	return runtime.JoinPaths(s.client.URL(), s.container, name), nil
}

// Get downloads a stored report
func (s *AzureSink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, apperrors.NewNotFoundError("Report not found", err)
		}
		return nil, apperrors.NewNetworkError("Report download failed", err)
	}

	retryReader := resp.Body
	defer retryReader.Close()

	data, err := io.ReadAll(retryReader)
	if err != nil {
		return nil, apperrors.NewNetworkError("Report download failed", err)
	}
	return data, nil
}
