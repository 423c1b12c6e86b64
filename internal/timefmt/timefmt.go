// Package timefmt renders message timestamps as short relative strings
// ("5 minutes ago", "Yesterday").
package timefmt

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// Invalid is returned for a zero time.
	Invalid = "Invalid date"
	// JustNow covers the first second and any time in the future.
	JustNow = "just now"

	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// Each bucket applies while the elapsed time is below D. Counts are floored.
// Weeks stop at 4 while months count in 30 days, so 28 and 29 days read
// "0 months ago".
var magnitudes = []humanize.RelTimeMagnitude{
	{D: 2 * time.Second, Format: JustNow, DivBy: time.Second},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "Yesterday", DivBy: day},
	{D: week, Format: "%d days %s", DivBy: day},
	{D: 2 * week, Format: "1 week %s", DivBy: week},
	{D: 4 * week, Format: "%d weeks %s", DivBy: week},
	{D: month, Format: "%d months %s", DivBy: month},
	{D: 2 * month, Format: "1 month %s", DivBy: month},
	{D: 12 * month, Format: "%d months %s", DivBy: month},
	{D: 2 * year, Format: "1 year %s", DivBy: year},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

// Format describes t relative to the current time.
func Format(t time.Time) string {
	return FormatAt(t, time.Now())
}

// FormatAt describes t relative to now.
func FormatAt(t, now time.Time) string {
	if t.IsZero() {
		return Invalid
	}
	if t.After(now) {
		return JustNow
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", magnitudes)
}
