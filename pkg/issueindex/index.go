// Package issueindex derives filtered, time-ordered and grouped views over an
// immutable issue list. Every function is pure; callers recompute on change.
package issueindex

import (
	"sort"

	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/timecode"
)

// Filter holds optional predicates. Empty fields pass everything through.
type Filter struct {
	File     string           `json:"file,omitempty"`
	Severity models.Severity  `json:"severity,omitempty"`
	Type     models.IssueType `json:"type,omitempty"`
}

// IsZero reports whether no predicate is set
func (f Filter) IsZero() bool {
	return f.File == "" && f.Severity == "" && f.Type == ""
}

// Match applies every set predicate conjunctively
func (f Filter) Match(issue models.Issue) bool {
	if f.File != "" && issue.FrameURL != f.File {
		return false
	}
	if f.Severity != "" && issue.Severity != f.Severity {
		return false
	}
	if f.Type != "" && issue.Type != f.Type {
		return false
	}
	return true
}

// FilterBy returns the issues matching f, preserving input order
func FilterBy(issues []models.Issue, f Filter) []models.Issue {
	if f.IsZero() {
		return issues
	}
	out := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if f.Match(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// TimedSubset returns issues carrying a timestamp, sorted ascending by the
// parsed value. Ties keep their original relative order.
func TimedSubset(issues []models.Issue) []models.Issue {
	timed := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.HasTimestamp() {
			timed = append(timed, issue)
		}
	}
	sort.SliceStable(timed, func(a, b int) bool {
		return timecode.Parse(timed[a].Timestamp) < timecode.Parse(timed[b].Timestamp)
	})
	return timed
}

// GroupRanks assigns each timed issue its zero-based position among issues
// sharing the exact same raw timestamp string, in encounter order. Grouping is
// textual: "1:05.2" and "1:05.20" land in different groups.
func GroupRanks(issues []models.Issue) map[string]int {
	seen := make(map[string]int)
	ranks := make(map[string]int)
	for _, issue := range issues {
		if !issue.HasTimestamp() {
			continue
		}
		ranks[issue.ID] = seen[issue.Timestamp]
		seen[issue.Timestamp]++
	}
	return ranks
}

// MaxStack returns the size of the largest raw-timestamp group, at least 1
func MaxStack(issues []models.Issue) int {
	counts := make(map[string]int)
	largest := 1
	for _, issue := range issues {
		if !issue.HasTimestamp() {
			continue
		}
		counts[issue.Timestamp]++
		if counts[issue.Timestamp] > largest {
			largest = counts[issue.Timestamp]
		}
	}
	return largest
}

// SeverityCounts tallies severities over a whole issue set
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Other  int `json:"other,omitempty"`
}

// Total returns the number of issues counted
func (c SeverityCounts) Total() int {
	return c.High + c.Medium + c.Low + c.Other
}

// CountSeverities counts over the full, unfiltered issue list
func CountSeverities(issues []models.Issue) SeverityCounts {
	var c SeverityCounts
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityHigh:
			c.High++
		case models.SeverityMedium:
			c.Medium++
		case models.SeverityLow:
			c.Low++
		default:
			c.Other++
		}
	}
	return c
}

// UniqueFiles returns the distinct non-empty frame_url values in first-occurrence order
func UniqueFiles(issues []models.Issue) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, issue := range issues {
		if issue.FrameURL == "" {
			continue
		}
		if _, ok := seen[issue.FrameURL]; ok {
			continue
		}
		seen[issue.FrameURL] = struct{}{}
		files = append(files, issue.FrameURL)
	}
	return files
}

// IndexOf returns the position of id in issues, or -1
func IndexOf(issues []models.Issue, id string) int {
	if id == "" {
		return -1
	}
	for i, issue := range issues {
		if issue.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the issue with the given id
func Find(issues []models.Issue, id string) (models.Issue, bool) {
	if i := IndexOf(issues, id); i >= 0 {
		return issues[i], true
	}
	return models.Issue{}, false
}
