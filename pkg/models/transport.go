package models

// ErrorResponse is the body returned for non-2xx responses.
// Detail is surfaced to the user verbatim.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AlternativesRequest asks for shorter replacements of a localized string
type AlternativesRequest struct {
	OriginalText string `json:"original_text" binding:"required"`
	Language     string `json:"language" binding:"required"`
	Context      string `json:"context,omitempty"`
}

// AlternativesResponse carries generated replacement strings
type AlternativesResponse struct {
	Success      bool     `json:"success"`
	OriginalText string   `json:"original_text"`
	Alternatives []string `json:"alternatives"`
}

// OverlayRequest asks the server to map issues onto a rendered media area
type OverlayRequest struct {
	ContainerWidth  float64 `json:"container_width" binding:"required"`
	ContainerHeight float64 `json:"container_height" binding:"required"`
	MediaWidth      float64 `json:"media_width" binding:"required"`
	MediaHeight     float64 `json:"media_height" binding:"required"`
	ActiveIssueID   string  `json:"active_issue_id,omitempty"`
	Issues          []Issue `json:"issues"`
}
