package domain

import (
	"fmt"
	"math"
	"strconv"
)

// FormatDuration renders seconds as "H hr M min S sec", dropping the hour part
// when it is zero. Seconds are rounded, minutes and hours truncated.
func FormatDuration(seconds float64) string {
	hours := math.Floor(seconds / 3600)
	minutes := math.Floor(math.Mod(seconds, 3600) / 60)
	secs := math.Round(math.Mod(seconds, 60))

	if hours > 0 {
		return fmt.Sprintf("%d hr %d min %d sec", int(hours), int(minutes), int(secs))
	}
	return fmt.Sprintf("%d min %d sec", int(minutes), int(secs))
}

// FormatDistance renders meters as "D.DD km (M m)" above one kilometer and "M m" otherwise.
func FormatDistance(meters float64) string {
	m := formatNumber(meters)
	if meters > 1000 {
		// Round on the decimal value so 12345 m gives 12.35 km, not the binary 12.34.
		km := math.Round(meters/10) / 100
		return fmt.Sprintf("%s km (%s m)", strconv.FormatFloat(km, 'f', 2, 64), m)
	}
	return m + " m"
}

// formatNumber prints v in its shortest decimal form (12 -> "12", 12.5 -> "12.5").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
