// Package apiclient talks to the analysis backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/validation"
)

const (
	// DefaultAttempts is the total number of tries for one call
	DefaultAttempts = 3
	DefaultTimeout  = 120 * time.Second

	analyzePath      = "/analyze"
	alternativesPath = "/generate-alternatives"
)

// Config configures a Client
type Config struct {
	BaseURL      string
	Attempts     int
	Timeout      time.Duration
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	Debug        bool
}

// Client calls the analysis and alternatives endpoints
type Client struct {
	http *resty.Client
	base string
}

// New builds a client for cfg.BaseURL. The base URL must be absolute; a
// trailing slash is dropped.
func New(cfg Config) (*Client, error) {
	base, err := validation.NewURLValidator().NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	wait := cfg.RetryWait
	if wait <= 0 {
		wait = time.Second
	}
	maxWait := cfg.RetryMaxWait
	if maxWait < wait {
		maxWait = 2 * wait
	}

	httpc := resty.New().
		SetBaseURL(base).
		SetLogger(logger.Logger).
		SetDebug(cfg.Debug).
		SetTimeout(timeout).
		SetRetryCount(attempts-1).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(maxWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(retryable).
		AddRetryHook(func(resp *resty.Response, err error) {
			fields := logrus.Fields{}
			if resp != nil && resp.Request != nil {
				fields["url"] = resp.Request.URL
				fields["attempt"] = resp.Request.Attempt
				fields["status"] = resp.StatusCode()
			}
			logger.WithFields(fields).WithError(err).Warn("Retrying analysis backend request")
		})

	return &Client{http: httpc, base: base}, nil
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.base
}

// retryable retries transport failures and 5xx responses, never 4xx
func retryable(resp *resty.Response, err error) bool {
	if resp == nil || resp.RawResponse == nil {
		return err != nil
	}
	return resp.StatusCode() >= http.StatusInternalServerError
}

// Analyze uploads files as multipart form data and returns the analysis result
func (c *Client) Analyze(ctx context.Context, files []models.Upload, provider models.Provider, inputType models.InputType) (*models.AnalysisResult, error) {
	readers := make([]*bytes.Reader, 0, len(files))
	fields := make([]*resty.MultipartField, 0, len(files))
	for _, f := range files {
		r := bytes.NewReader(f.Data)
		readers = append(readers, r)
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fields = append(fields, &resty.MultipartField{
			Param:       "files",
			FileName:    f.Filename,
			ContentType: ct,
			Reader:      r,
		})
	}

	logger.WithFields(logrus.Fields{
		"files":      len(files),
		"provider":   provider,
		"input_type": inputType,
	}).Info("Submitting files for analysis")

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"provider":   string(provider),
			"input_type": string(inputType),
		}).
		SetMultipartFields(fields...).
		// resty rebuilds the multipart body from these readers on every attempt
		AddRetryCondition(func(*resty.Response, error) bool {
			for _, r := range readers {
				_, _ = r.Seek(0, io.SeekStart)
			}
			return false
		}).
		Post(analyzePath)
	if err := checkResponse(ctx, resp, err); err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, apperrors.NewProcessingError("Malformed analysis response", err)
	}
	return &result, nil
}

// GenerateAlternatives asks for shorter replacements of originalText
func (c *Client) GenerateAlternatives(ctx context.Context, originalText, language string) ([]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AlternativesRequest{OriginalText: originalText, Language: language}).
		Post(alternativesPath)
	if err := checkResponse(ctx, resp, err); err != nil {
		return nil, err
	}

	var out models.AlternativesResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperrors.NewProcessingError("Malformed alternatives response", err)
	}
	if out.Alternatives == nil {
		return []string{}, nil
	}
	return out.Alternatives, nil
}

// checkResponse maps transport failures and non-2xx responses to AppErrors
func checkResponse(ctx context.Context, resp *resty.Response, err error) error {
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError("Analysis backend did not respond in time", err)
		}
		return apperrors.NewNetworkError("Could not reach the analysis backend", err)
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return apperrors.NewAPIError(detail(resp), resp.StatusCode())
	}
	return nil
}

// detail extracts {"detail": "..."} from an error body, else "HTTP <status>"
func detail(resp *resty.Response) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode())
}
