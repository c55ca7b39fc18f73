package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Days formats a day count with at most two decimals.
func Days(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Count formats a head count with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Percent formats a fraction as a percentage with one decimal.
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Exposer renders an exposer id, naming external exposures.
func Exposer(id int) string {
	if id < 0 {
		return "external"
	}
	return strconv.Itoa(id)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
