package repository

import (
	"context"
	"time"

	"github.com/anime-shed/localens-go/pkg/models"
)

// ResultRepository keeps analysis results so reports can be rebuilt later
type ResultRepository interface {
	// Save stores a result and returns its id
	Save(ctx context.Context, result *models.AnalysisResult) (string, error)

	// Get retrieves a stored result
	Get(ctx context.Context, id string) (*models.AnalysisResult, error)

	// List returns summaries, newest first
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a stored result
	Delete(ctx context.Context, id string) error
}

// Summary describes a stored result without its issues
type Summary struct {
	ID          string    `json:"id"`
	StoredAt    time.Time `json:"stored_at"`
	Provider    string    `json:"provider"`
	InputType   string    `json:"input_type"`
	FileCount   int       `json:"file_count"`
	TotalIssues int       `json:"total_issues"`
}
