package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/anime-shed/localens-go/internal/service"
	"github.com/anime-shed/localens-go/pkg/export"
	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/timecode"
)

var severityColors = map[models.Severity]*color.Color{
	models.SeverityHigh:   color.New(color.FgHiRed, color.Bold),
	models.SeverityMedium: color.New(color.FgHiYellow),
	models.SeverityLow:    color.New(color.FgHiGreen),
}

func severityCell(s models.Severity) string {
	label := models.SeverityMeta(s).Label
	if c, ok := severityColors[s]; ok {
		return c.Sprint(label)
	}
	return label
}

// loadIssues reads a saved analysis result or a bare issue array
func loadIssues(path string) (*models.AnalysisResult, []models.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var issues []models.Issue
		if err := json.Unmarshal(data, &issues); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return nil, issues, nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &result, result.AllIssues(), nil
}

func writeSummary(w io.Writer, res *models.AnalysisResult) {
	counts := issueindex.CountSeverities(res.AllIssues())
	fmt.Fprintf(w, "%s analysis with %s: %d file(s), %d issue(s) in %.2fs\n",
		res.InputType, models.ProviderMeta(models.Provider(res.Provider)).Label,
		len(res.Results), res.TotalIssues, res.ProcessingTime)
	fmt.Fprintf(w, "  %s %d  %s %d  %s %d\n",
		severityCell(models.SeverityHigh), counts.High,
		severityCell(models.SeverityMedium), counts.Medium,
		severityCell(models.SeverityLow), counts.Low)
	if res.AnalyzedFrames != nil {
		fmt.Fprintf(w, "  frames analyzed: %d\n", *res.AnalyzedFrames)
	}
}

func writeIssueTable(w io.Writer, issues []models.Issue) error {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "ID", "Type", "Severity", "Language", "Time", "Location", "Description")
	for n, is := range issues {
		if err := table.Append([]string{
			fmt.Sprint(n + 1),
			is.ID,
			models.TypeMeta(is.Type).Label,
			severityCell(is.Severity),
			is.Language,
			is.Timestamp,
			export.Location(is.Location),
			is.Description,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeTimeline(w io.Writer, issues []models.Issue, duration float64) error {
	timed := issueindex.TimedSubset(issues)
	if len(timed) == 0 {
		fmt.Fprintln(w, "No timed issues.")
		return nil
	}
	if !(duration > 0) {
		duration = issueindex.EstimateDuration(timed)
	}

	ticks := issueindex.Ticks(duration)
	labels := make([]string, len(ticks))
	for i, t := range ticks {
		labels[i] = timecode.Format(t, false)
	}
	fmt.Fprintf(w, "duration %s, ticks %s\n", timecode.Format(duration, false), strings.Join(labels, " "))

	ranks := issueindex.GroupRanks(timed)
	table := tablewriter.NewWriter(w)
	table.Header("Time", "Position", "Stack", "ID", "Type", "Severity")
	for _, is := range timed {
		if err := table.Append([]string{
			is.Timestamp,
			fmt.Sprintf("%.1f%%", issueindex.MarkerPercent(is.Timestamp, duration)),
			fmt.Sprint(ranks[is.ID]),
			is.ID,
			models.TypeMeta(is.Type).Label,
			severityCell(is.Severity),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeAlternatives(w io.Writer, issues []models.Issue, alts map[string][]string) {
	for _, is := range issues {
		list, ok := alts[is.ID]
		if !ok || len(list) == 0 {
			continue
		}
		ranked := service.RankAlternatives(is.SourceText(), list)
		fmt.Fprintf(w, "%s (%s): %s\n", is.ID, is.SourceText(), strings.Join(ranked, ", "))
	}
}
