// Package duration provides parsing for human-readable age thresholds.
package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHours parses thresholds like "24", "36h", "3d", "2w" or "1mo" into
// whole hours. A bare number is taken as hours.
func ParseHours(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 24, 36h, 3d, 2w)", s)
	}

	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return n, nil
	case "d", "day", "days":
		return n * 24, nil
	case "w", "wk", "wks", "week", "weeks":
		return n * 7 * 24, nil
	case "mo", "month", "months":
		return n * 30 * 24, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
