package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/localens-go/pkg/models"
)

func sample() []models.Issue {
	return []models.Issue{
		{
			ID:          "issue-1",
			Type:        models.TypeTextTruncation,
			Severity:    models.SeverityHigh,
			Description: `Button reads "Einstellu..."`,
			Location:    models.BoundingBox{X1: 680, Y1: 45, X2: 820, Y2: 85},
			Language:    "de-DE",
			Suggestion:  "Use \"Einstell.\"",
		},
		{
			ID:          "issue-2",
			Type:        models.TypeLayoutBreak,
			Severity:    models.SeverityMedium,
			Description: "Subtitle wraps, overlaps HUD",
			Location:    models.BoundingBox{X1: 300, Y1: 200.5, X2: 700, Y2: 600},
			Language:    "fr-FR",
			Suggestion:  "Shorten line",
			Timestamp:   "1:05.2",
		},
	}
}

func TestCSV(t *testing.T) {
	got := CSV(sample())
	want := strings.Join([]string{
		"ID,Type,Severity,Description,Language,Location,Timestamp,Suggestion",
		`issue-1,TEXT_TRUNCATION,HIGH,"Button reads ""Einstellu...""",de-DE,"[680,45]->[820,85]",,"Use ""Einstell."""`,
		`issue-2,LAYOUT_BREAK,MEDIUM,"Subtitle wraps, overlaps HUD",fr-FR,"[300,200.5]->[700,600]",1:05.2,"Shorten line"`,
	}, "\n")
	assert.Equal(t, want, got)
	assert.Equal(t, "ID,Type,Severity,Description,Language,Location,Timestamp,Suggestion", CSV(nil))
}

func TestMarkdown(t *testing.T) {
	lines := strings.Split(Markdown(sample()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| # | Type | Severity | Description | Language | Suggestion |", lines[0])
	assert.Equal(t, "|---|------|----------|-------------|----------|------------|", lines[1])
	assert.Equal(t, `| 1 | TEXT_TRUNCATION | HIGH | Button reads "Einstellu..." | de-DE | Use "Einstell." |`, lines[2])
	assert.Equal(t, "| 2 | LAYOUT_BREAK | MEDIUM | Subtitle wraps, overlaps HUD | fr-FR | Shorten line |", lines[3])
}

func TestJSON(t *testing.T) {
	data, err := JSON(sample())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"issue-1\""))
	assert.False(t, strings.HasSuffix(string(data), "\n"))

	var back []models.Issue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sample(), back)

	empty, err := JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestJSON_NoHTMLEscaping(t *testing.T) {
	data, err := JSON([]models.Issue{{ID: "x", Description: "<b>&</b>"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "<b>&</b>")
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in       string
		want     Format
		fileName string
		mime     string
	}{
		{"json", FormatJSON, "trailer_report.json", "application/json"},
		{"CSV", FormatCSV, "trailer_report.csv", "text/csv"},
		{"md", FormatMarkdown, "trailer_report.md", "text/markdown"},
		{"markdown", FormatMarkdown, "trailer_report.md", "text/markdown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.fileName, FileName("trailer", f))
			assert.Equal(t, tt.mime, f.ContentType())
		})
	}

	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
	assert.Equal(t, "localens_report.json", FileName("", FormatJSON))

	f, ok := FormatOf("trailer_report.md")
	assert.True(t, ok)
	assert.Equal(t, FormatMarkdown, f)
	_, ok = FormatOf("README")
	assert.False(t, ok)

	_, err = Render(sample(), Format("pdf"))
	assert.Error(t, err)
}
