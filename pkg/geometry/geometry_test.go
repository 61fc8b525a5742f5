package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/localens-go/pkg/models"
)

const eps = 1e-9

func TestContainFit_RejectsUnknownSizes(t *testing.T) {
	tests := []struct {
		name             string
		container, media Size
	}{
		{"zero container", Size{0, 0}, Size{1920, 1080}},
		{"zero media width", Size{800, 450}, Size{0, 1080}},
		{"zero media height", Size{800, 450}, Size{1920, 0}},
		{"negative", Size{-1, 450}, Size{1920, 1080}},
		{"nan", Size{math.NaN(), 450}, Size{1920, 1080}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ContainFit(tt.container, tt.media)
			assert.False(t, ok)
		})
	}
}

func TestContainFit_Letterbox(t *testing.T) {
	// wide media in a square container: width fills, centered vertically
	g, ok := ContainFit(Size{1000, 1000}, Size{1920, 1080})
	require.True(t, ok)
	assert.InDelta(t, 1000, g.DisplayedWidth, eps)
	assert.InDelta(t, 562.5, g.DisplayedHeight, eps)
	assert.InDelta(t, 0, g.OffsetX, eps)
	assert.InDelta(t, 218.75, g.OffsetY, eps)
}

func TestContainFit_Pillarbox(t *testing.T) {
	// portrait media in a 16:9 container: height fills, centered horizontally
	g, ok := ContainFit(Size{1600, 900}, Size{1080, 1920})
	require.True(t, ok)
	assert.InDelta(t, 900, g.DisplayedHeight, eps)
	assert.InDelta(t, 506.25, g.DisplayedWidth, eps)
	assert.InDelta(t, (1600-506.25)/2, g.OffsetX, eps)
	assert.InDelta(t, 0, g.OffsetY, eps)
}

func TestContainFit_FitsAndPreservesAspect(t *testing.T) {
	containers := []Size{{320, 240}, {1920, 1080}, {500, 1200}, {1, 1}, {777, 333}}
	medias := []Size{{640, 480}, {3840, 2160}, {1080, 1920}, {1, 1000}, {1000, 1}, {333, 777}}

	for _, c := range containers {
		for _, m := range medias {
			g, ok := ContainFit(c, m)
			require.True(t, ok)

			assert.GreaterOrEqual(t, g.OffsetX, -eps)
			assert.GreaterOrEqual(t, g.OffsetY, -eps)
			assert.LessOrEqual(t, g.OffsetX+g.DisplayedWidth, c.Width+1e-6)
			assert.LessOrEqual(t, g.OffsetY+g.DisplayedHeight, c.Height+1e-6)

			want := m.Width / m.Height
			got := g.DisplayedWidth / g.DisplayedHeight
			assert.InDelta(t, 1, got/want, 1e-9, "container %v media %v", c, m)
		}
	}
}

func TestGeometry_PointCorners(t *testing.T) {
	for _, g := range []Geometry{
		{DisplayedWidth: 1000, DisplayedHeight: 562.5, OffsetY: 218.75},
		{DisplayedWidth: 506.25, DisplayedHeight: 900, OffsetX: 546.875},
		{DisplayedWidth: 1, DisplayedHeight: 1},
	} {
		tl := g.Point(0, 0)
		assert.InDelta(t, g.OffsetX, tl.X, eps)
		assert.InDelta(t, g.OffsetY, tl.Y, eps)

		br := g.Point(1000, 1000)
		assert.InDelta(t, g.OffsetX+g.DisplayedWidth, br.X, eps)
		assert.InDelta(t, g.OffsetY+g.DisplayedHeight, br.Y, eps)
	}
}

func TestGeometry_BoxExpansion(t *testing.T) {
	g := Geometry{DisplayedWidth: 1000, DisplayedHeight: 1000}

	r, ok := g.Box(models.BoundingBox{X1: 100, Y1: 200, X2: 300, Y2: 250}, DefaultExpansion)
	require.True(t, ok)
	assert.InDelta(t, 80, r.X, eps)
	assert.InDelta(t, 195, r.Y, eps)
	assert.InDelta(t, 240, r.Width, eps)
	assert.InDelta(t, 60, r.Height, eps)
}

func TestGeometry_BoxDegenerate(t *testing.T) {
	g := Geometry{DisplayedWidth: 800, DisplayedHeight: 450}
	boxes := []models.BoundingBox{
		{X1: 100, Y1: 100, X2: 100, Y2: 200},
		{X1: 100, Y1: 100, X2: 200, Y2: 100},
		{X1: 300, Y1: 100, X2: 200, Y2: 200},
	}
	for _, b := range boxes {
		_, ok := g.Box(b, DefaultExpansion)
		assert.False(t, ok, "box %+v", b)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.Current()
	assert.False(t, ok)

	_, ok = tr.Resize(Size{800, 450})
	assert.False(t, ok, "no geometry before media size is known")

	g, ok := tr.MediaLoaded(Size{1920, 1080})
	require.True(t, ok)
	assert.InDelta(t, 800, g.DisplayedWidth, eps)

	g, ok = tr.Resize(Size{400, 400})
	require.True(t, ok)
	assert.InDelta(t, 400, g.DisplayedWidth, eps)
	assert.InDelta(t, 225, g.DisplayedHeight, eps)

	tr.MediaUnloaded()
	_, ok = tr.Current()
	assert.False(t, ok)
}
