// Package overlay turns issues into positioned, colored shapes over rendered
// media and holds the selection/filter view state that decides which issues
// are drawn.
package overlay

import (
	"github.com/anime-shed/localens-go/pkg/geometry"
	"github.com/anime-shed/localens-go/pkg/models"
)

const (
	activeStrokeWidth = 2.4
	strokeWidth       = 1.2
	dashPattern       = "4,2"
)

// Shape is one clickable issue rectangle
type Shape struct {
	IssueID     string        `json:"issue_id"`
	Rect        geometry.Rect `json:"rect"`
	Colors      Colors        `json:"colors"`
	Label       string        `json:"label"`
	Active      bool          `json:"active"`
	StrokeWidth float64       `json:"stroke_width"`
	Dash        string        `json:"dash,omitempty"`
}

// Label renders the type label plus the raw timestamp when present
func Label(issue models.Issue) string {
	label := models.TypeMeta(issue.Type).Label
	if issue.HasTimestamp() {
		label += " [" + issue.Timestamp + "]"
	}
	return label
}

// Render maps issues onto g. Issues whose boxes collapse to zero area are
// skipped. The order of the result follows issues, so later shapes sit on top.
func Render(g geometry.Geometry, issues []models.Issue, activeID string) []Shape {
	shapes := make([]Shape, 0, len(issues))
	for _, issue := range issues {
		rect, ok := g.Box(issue.Location, geometry.DefaultExpansion)
		if !ok {
			continue
		}
		active := activeID != "" && issue.ID == activeID
		s := Shape{
			IssueID:     issue.ID,
			Rect:        rect,
			Colors:      ColorsFor(issue.Severity, active),
			Label:       Label(issue),
			Active:      active,
			StrokeWidth: strokeWidth,
			Dash:        dashPattern,
		}
		if active {
			s.StrokeWidth = activeStrokeWidth
			s.Dash = ""
		}
		shapes = append(shapes, s)
	}
	return shapes
}

// HitTest returns the topmost shape containing the point
func HitTest(shapes []Shape, x, y float64) (Shape, bool) {
	p := geometry.Point{X: x, Y: y}
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Rect.Contains(p) {
			return shapes[i], true
		}
	}
	return Shape{}, false
}
