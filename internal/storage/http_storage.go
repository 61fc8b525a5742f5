package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/pkg/validation"
)

// HTTPSink PUTs reports to "<base>/<name>" on a report collector
type HTTPSink struct {
	client *resty.Client
}

// NewHTTPSink creates a sink that tries each request 3 times. Only transient
// failures (transport errors and 5xx) are retried, backing off from wait.
func NewHTTPSink(baseURL string, wait time.Duration) (*HTTPSink, error) {
	base, err := validation.NewURLValidator().NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if wait <= 0 {
		wait = time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetLogger(logger.Logger).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(2*wait).
		SetHeader("User-Agent", "LocaLens/1.0").
		// 4xx client errors are non-retryable
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil || resp.RawResponse == nil {
				return err != nil
			}
			return resp.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPSink{client: client}, nil
}

// Put uploads data and returns the report URL
func (s *HTTPSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put("/" + name)
	if err := statusError(resp, err, "upload"); err != nil {
		return "", err
	}
	return resp.Request.URL, nil
}

// Get downloads a report
func (s *HTTPSink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/" + name)
	if err := statusError(resp, err, "download"); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func statusError(resp *resty.Response, err error, op string) error {
	if err != nil {
		return apperrors.NewNetworkError(fmt.Sprintf("Report %s failed after 3 attempts", op), err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return apperrors.NewNotFoundError("Report not found", fmt.Errorf("client error: status code %d", code))
	case code >= 400 && code < 500:
		return apperrors.NewAPIError(fmt.Sprintf("client error: status code %d", code), code)
	case code >= 500:
		return apperrors.NewAPIError(fmt.Sprintf("server error: status code %d", code), code)
	}
	return nil
}
