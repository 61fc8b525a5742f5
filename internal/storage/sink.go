// Package storage persists exported reports.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
)

// ReportSink stores rendered reports by name
type ReportSink interface {
	// Put writes data and returns where it ended up
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Get reads a stored report back
	Get(ctx context.Context, name string) ([]byte, error)
}

// LocalSink writes reports into a directory
type LocalSink struct {
	dir string
}

// NewLocalSink creates dir if needed
func NewLocalSink(dir string) (*LocalSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewInternalError("Cannot create report directory", err)
	}
	return &LocalSink{dir: dir}, nil
}

// Put writes data to dir/name
func (s *LocalSink) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewInternalError("Cannot write report", err)
	}
	return path, nil
}

// Get reads dir/name
func (s *LocalSink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError("Report not found", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("Cannot read report", err)
	}
	return data, nil
}

func (s *LocalSink) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// ValidateName rejects names that would escape the sink
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return apperrors.NewValidationError("Invalid report name", nil)
	}
	return nil
}
