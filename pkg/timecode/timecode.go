// Package timecode converts between "M:SS[.s]" video timestamps and seconds.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts "minutes:seconds" into seconds. The seconds part may carry a
// fraction ("1:05.2"). Missing or non-numeric components count as zero, so
// Parse never fails.
func Parse(text string) float64 {
	// fields past the second are ignored
	parts := strings.Split(strings.TrimSpace(text), ":")
	secs := 0.0
	if len(parts) > 1 {
		secs = parseComponent(parts[1])
	}
	return parseComponent(parts[0])*60 + secs
}

func parseComponent(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Format renders seconds as "M:SS", or "M:SS.s" when withDecimal is set.
// Minutes are not padded.
func Format(seconds float64, withDecimal bool) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	if withDecimal {
		// round once so 59.96 becomes 1:00.0 instead of 0:60.0
		tenths := math.Round(seconds * 10)
		m := int(tenths) / 600
		s := (tenths - float64(m*600)) / 10
		return fmt.Sprintf("%d:%04.1f", m, s)
	}
	whole := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
