// Package export renders issue lists as downloadable reports.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/anime-shed/localens-go/pkg/models"
)

// Format is a report encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// DefaultBaseName is used when no file name is supplied
const DefaultBaseName = "localens"

// Formats lists the supported formats in menu order
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown}

const (
	csvHeader      = "ID,Type,Severity,Description,Language,Location,Timestamp,Suggestion"
	markdownHeader = "| # | Type | Severity | Description | Language | Suggestion |"
	markdownRule   = "|---|------|----------|-------------|----------|------------|"
)

// ParseFormat accepts a format name or its file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FormatOf infers the format from a file name's extension
func FormatOf(name string) (Format, bool) {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Extension is the file extension without the dot
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType is the MIME type of the rendered report
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	}
	return "application/octet-stream"
}

// FileName builds "<base>_report.<ext>"
func FileName(base string, f Format) string {
	if base == "" {
		base = DefaultBaseName
	}
	return base + "_report." + f.Extension()
}

// Render encodes issues in the requested format
func Render(issues []models.Issue, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(issues)
	case FormatCSV:
		return []byte(CSV(issues)), nil
	case FormatMarkdown:
		return []byte(Markdown(issues)), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// JSON writes the issues as an indented array
func JSON(issues []models.Issue) ([]byte, error) {
	if issues == nil {
		issues = []models.Issue{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issues); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CSV writes one row per issue under a fixed header. Description and
// suggestion are always quoted; nothing else is escaped.
func CSV(issues []models.Issue) string {
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, csvHeader)
	for _, i := range issues {
		lines = append(lines, strings.Join([]string{
			i.ID,
			string(i.Type),
			string(i.Severity),
			quote(i.Description),
			i.Language,
			`"` + Location(i.Location) + `"`,
			i.Timestamp,
			quote(i.Suggestion),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// Markdown writes a fixed-column table. Cell text is not escaped.
func Markdown(issues []models.Issue) string {
	lines := make([]string, 0, len(issues)+2)
	lines = append(lines, markdownHeader, markdownRule)
	for n, i := range issues {
		lines = append(lines, fmt.Sprintf("| %d | %s | %s | %s | %s | %s |",
			n+1, i.Type, i.Severity, i.Description, i.Language, i.Suggestion))
	}
	return strings.Join(lines, "\n")
}

// Location formats a box as "[x1,y1]->[x2,y2]"
func Location(b models.BoundingBox) string {
	return "[" + num(b.X1) + "," + num(b.Y1) + "]->[" + num(b.X2) + "," + num(b.Y2) + "]"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
