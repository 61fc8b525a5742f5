package overlay

import "github.com/anime-shed/localens-go/pkg/models"

// Colors is the fill/stroke/label-background triple of one shape
type Colors struct {
	Fill            string `json:"fill"`
	Stroke          string `json:"stroke"`
	LabelBackground string `json:"label_background"`
}

// ActiveColors highlights the selected issue regardless of severity
var ActiveColors = Colors{
	Fill:            "rgba(234,179,8,0.25)",
	Stroke:          "#eab308",
	LabelBackground: "#eab308",
}

// FallbackColors is used for severities outside the known set
var FallbackColors = Colors{
	Fill:            "rgba(255,255,255,0.1)",
	Stroke:          "#fff",
	LabelBackground: "#fff",
}

var severityColors = map[models.Severity]Colors{
	models.SeverityHigh: {
		Fill:            "rgba(239,68,68,0.15)",
		Stroke:          "#ef4444",
		LabelBackground: "#ef4444",
	},
	models.SeverityMedium: {
		Fill:            "rgba(250,204,21,0.15)",
		Stroke:          "#facc15",
		LabelBackground: "#eab308",
	},
	models.SeverityLow: {
		Fill:            "rgba(34,197,94,0.1)",
		Stroke:          "#22c55e",
		LabelBackground: "#22c55e",
	},
}

// ColorsFor resolves the palette for a severity
func ColorsFor(sev models.Severity, active bool) Colors {
	if active {
		return ActiveColors
	}
	if c, ok := severityColors[sev]; ok {
		return c
	}
	return FallbackColors
}
