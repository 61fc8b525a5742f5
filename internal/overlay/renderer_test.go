package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/localens-go/pkg/geometry"
	"github.com/anime-shed/localens-go/pkg/models"
)

func squareGeometry(t *testing.T) geometry.Geometry {
	t.Helper()
	g, ok := geometry.ContainFit(geometry.Size{Width: 1000, Height: 1000}, geometry.Size{Width: 1000, Height: 1000})
	require.True(t, ok)
	return g
}

func TestColorsFor(t *testing.T) {
	tests := []struct {
		name   string
		sev    models.Severity
		active bool
		want   Colors
	}{
		{"high", models.SeverityHigh, false, Colors{"rgba(239,68,68,0.15)", "#ef4444", "#ef4444"}},
		{"medium label differs from stroke", models.SeverityMedium, false, Colors{"rgba(250,204,21,0.15)", "#facc15", "#eab308"}},
		{"low", models.SeverityLow, false, Colors{"rgba(34,197,94,0.1)", "#22c55e", "#22c55e"}},
		{"unknown", "CRITICAL", false, FallbackColors},
		{"active overrides severity", models.SeverityHigh, true, ActiveColors},
		{"active overrides unknown", "CRITICAL", true, ActiveColors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorsFor(tt.sev, tt.active))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Text Truncation", Label(models.Issue{Type: models.TypeTextTruncation}))
	assert.Equal(t, "Layout Break [1:05.2]", Label(models.Issue{Type: models.TypeLayoutBreak, Timestamp: "1:05.2"}))
	assert.Equal(t, "Mirrored Glyph", Label(models.Issue{Type: "MIRRORED_GLYPH"}))
}

func TestRender(t *testing.T) {
	g := squareGeometry(t)
	issues := []models.Issue{
		{ID: "a", Type: models.TypeOverlap, Severity: models.SeverityLow, Location: models.BoundingBox{X1: 100, Y1: 100, X2: 200, Y2: 200}},
		{ID: "flat", Type: models.TypeOverlap, Severity: models.SeverityLow, Location: models.BoundingBox{X1: 100, Y1: 100, X2: 300, Y2: 100}},
		{ID: "b", Type: models.TypeAlignment, Severity: models.SeverityHigh, Location: models.BoundingBox{X1: 500, Y1: 500, X2: 600, Y2: 600}},
	}

	shapes := Render(g, issues, "b")
	require.Len(t, shapes, 2, "zero-area boxes are not drawn")

	a := shapes[0]
	assert.Equal(t, "a", a.IssueID)
	assert.InDelta(t, 90, a.Rect.X, 1e-9)
	assert.InDelta(t, 120, a.Rect.Width, 1e-9)
	assert.False(t, a.Active)
	assert.Equal(t, 1.2, a.StrokeWidth)
	assert.Equal(t, "4,2", a.Dash)

	b := shapes[1]
	assert.True(t, b.Active)
	assert.Equal(t, ActiveColors, b.Colors)
	assert.Equal(t, 2.4, b.StrokeWidth)
	assert.Empty(t, b.Dash)
}

func TestRender_NoActive(t *testing.T) {
	g := squareGeometry(t)
	shapes := Render(g, []models.Issue{{ID: "", Location: models.BoundingBox{X2: 10, Y2: 10}}}, "")
	require.Len(t, shapes, 1)
	assert.False(t, shapes[0].Active, "empty id must never match an empty selection")
}

func TestHitTest_Topmost(t *testing.T) {
	g := squareGeometry(t)
	issues := []models.Issue{
		{ID: "under", Location: models.BoundingBox{X1: 0, Y1: 0, X2: 500, Y2: 500}},
		{ID: "over", Location: models.BoundingBox{X1: 200, Y1: 200, X2: 300, Y2: 300}},
	}
	shapes := Render(g, issues, "")

	hit, ok := HitTest(shapes, 250, 250)
	require.True(t, ok)
	assert.Equal(t, "over", hit.IssueID)

	hit, ok = HitTest(shapes, 50, 50)
	require.True(t, ok)
	assert.Equal(t, "under", hit.IssueID)

	_, ok = HitTest(shapes, 900, 900)
	assert.False(t, ok)
}
