package issueindex

import (
	"math"

	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/timecode"
)

const (
	durationPad     = 30.0
	minimumDuration = 60.0
)

// EstimateDuration guesses a video length from its issues: the latest
// timestamp plus 30 seconds, never less than a minute. Use it only when the
// media element cannot report its real duration.
func EstimateDuration(issues []models.Issue) float64 {
	latest := 0.0
	for _, issue := range issues {
		if !issue.HasTimestamp() {
			continue
		}
		if secs := timecode.Parse(issue.Timestamp); secs > latest {
			latest = secs
		}
	}
	return math.Max(latest+durationPad, minimumDuration)
}

// Ticks returns timeline tick positions in seconds: every 30s for videos up to
// five minutes, every 60s beyond that.
func Ticks(duration float64) []float64 {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil
	}
	step := 60.0
	if duration <= 300 {
		step = 30
	}
	var ticks []float64
	for t := 0.0; t <= duration; t += step {
		ticks = append(ticks, t)
	}
	return ticks
}

// MarkerPercent positions a timestamp along a timeline of the given duration,
// clamped to [0, 100]
func MarkerPercent(timestamp string, duration float64) float64 {
	if !(duration > 0) {
		return 0
	}
	pct := timecode.Parse(timestamp) / duration * 100
	return math.Min(math.Max(pct, 0), 100)
}

// Wrap steps from index current by delta over n items, wrapping at both ends.
// A current index of -1 (nothing selected) moves to the first item on a step
// forward and to the last on a step back.
func Wrap(current, delta, n int) int {
	if n <= 0 {
		return -1
	}
	if current < 0 || current >= n {
		if delta >= 0 {
			return 0
		}
		return n - 1
	}
	return ((current+delta)%n + n) % n
}
