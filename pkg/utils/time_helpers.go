package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MinutesBetween returns the whole minutes elapsed from a to b, floored
// at zero. All timing records store whole minutes.
func MinutesBetween(a, b time.Time) int64 {
	m := int64(b.Sub(a).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

// FormatMinutesHumanReadable renders minutes as "1d 2h 3m" for board
// and export views.
func FormatMinutesHumanReadable(totalMinutes int64) string {
	if totalMinutes <= 0 {
		return "0m"
	}

	days := totalMinutes / (24 * 60)
	totalMinutes %= 24 * 60
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}

// FormatFloatMinutes rounds an average to the nearest minute before
// formatting. Used for department statistics.
func FormatFloatMinutes(totalMinutes float64) string {
	if totalMinutes < 1 {
		return "0m"
	}
	return FormatMinutesHumanReadable(int64(math.Round(totalMinutes)))
}
