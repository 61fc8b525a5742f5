package models

// InputType selects how uploaded media is analyzed
type InputType string

const (
	InputImage InputType = "image"
	InputVideo InputType = "video"
)

// Provider names the external AI backend that produced an analysis
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderMock   Provider = "mock"
)

// IssueType is the closed set of localization defect categories.
// Values outside the set still decode; lookups fall back to a humanized label.
type IssueType string

const (
	TypeTextTruncation     IssueType = "TEXT_TRUNCATION"
	TypeTextOverflow       IssueType = "TEXT_OVERFLOW"
	TypeTextScaling        IssueType = "TEXT_SCALING"
	TypeFontRendering      IssueType = "FONT_RENDERING"
	TypeEncodingError      IssueType = "ENCODING_ERROR"
	TypeUntranslated       IssueType = "UNTRANSLATED"
	TypePlaceholderVisible IssueType = "PLACEHOLDER_VISIBLE"
	TypeLayoutBreak        IssueType = "LAYOUT_BREAK"
	TypeOverlap            IssueType = "OVERLAP"
	TypeAlignment          IssueType = "ALIGNMENT"
	TypeCulturalIssue      IssueType = "CULTURAL_ISSUE"
)

// AllIssueTypes lists every known issue type in display order
var AllIssueTypes = []IssueType{
	TypeTextTruncation,
	TypeTextOverflow,
	TypeTextScaling,
	TypeFontRendering,
	TypeEncodingError,
	TypeUntranslated,
	TypePlaceholderVisible,
	TypeLayoutBreak,
	TypeOverlap,
	TypeAlignment,
	TypeCulturalIssue,
}

// Severity orders issues for display and coloring only
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// AllSeverities lists the known severities from most to least severe
var AllSeverities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// BoundingBox locates an issue in the normalized 0-1000 coordinate space
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the normalized width, negative for inverted boxes
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the normalized height, negative for inverted boxes
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Issue is one detected localization defect.
// It is treated as immutable; only AlternativeTexts is replaced, through WithAlternatives.
type Issue struct {
	ID               string      `json:"id"`
	Type             IssueType   `json:"type"`
	Severity         Severity    `json:"severity"`
	Description      string      `json:"description"`
	Location         BoundingBox `json:"location"`
	Language         string      `json:"language"`
	Suggestion       string      `json:"suggestion"`
	Timestamp        string      `json:"timestamp,omitempty"`
	FrameURL         string      `json:"frame_url,omitempty"`
	OriginalText     string      `json:"original_text,omitempty"`
	AlternativeTexts []string    `json:"alternative_texts,omitempty"`
}

// HasTimestamp reports whether the issue came from a video frame
func (i Issue) HasTimestamp() bool {
	return i.Timestamp != ""
}

// WithAlternatives returns a copy of the issue carrying the given alternatives
func (i Issue) WithAlternatives(alts []string) Issue {
	cp := make([]string, len(alts))
	copy(cp, alts)
	i.AlternativeTexts = cp
	return i
}

// SourceText is the text alternatives are generated for
func (i Issue) SourceText() string {
	if i.OriginalText != "" {
		return i.OriginalText
	}
	return i.Description
}

// FileResult groups the issues found in one uploaded file
type FileResult struct {
	Filename string  `json:"filename"`
	Issues   []Issue `json:"issues"`
}

// AnalysisResult is the output of one analysis run.
// It is created whole from a successful response and replaced whole on the next run.
type AnalysisResult struct {
	Success        bool         `json:"success"`
	Provider       string       `json:"provider"`
	InputType      string       `json:"input_type"`
	TotalIssues    int          `json:"total_issues"`
	ProcessingTime float64      `json:"processing_time"`
	Results        []FileResult `json:"results"`
	AnalyzedFrames *int         `json:"analyzed_frames,omitempty"`
}

// AllIssues flattens the per-file issues in result order
func (r *AnalysisResult) AllIssues() []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, fr := range r.Results {
		out = append(out, fr.Issues...)
	}
	return out
}

// IsVideo reports whether the run analyzed video input
func (r *AnalysisResult) IsVideo() bool {
	return r != nil && InputType(r.InputType) == InputVideo
}
