package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
)

// URLValidator checks the analysis backend base URL
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options.
// Hosts are compared without the port.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateBaseURL validates an API base such as "http://localhost:8000/api"
func (v *URLValidator) ValidateBaseURL(baseURL string) error {
	_, err := v.NormalizeBaseURL(baseURL)
	return err
}

// NormalizeBaseURL validates baseURL and strips trailing slashes so paths can
// be appended with a single "/"
func (v *URLValidator) NormalizeBaseURL(baseURL string) (string, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return "", apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return "", apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return "", apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return "", apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return "", apperrors.NewValidationError("URL host not allowed", nil)
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return "", apperrors.NewValidationError("URL must not carry a query or fragment", nil)
	}

	return strings.TrimRight(trimmed, "/"), nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
