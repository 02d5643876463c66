package tcx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// StartTimeLayout renders start times the way en-US toLocaleString does.
const StartTimeLayout = "1/2/2006, 3:04:05 PM"

// FormatDuration converts seconds to M:SS. Minutes are not folded into hours.
func FormatDuration(totalSeconds float64) string {
	m := math.Floor(totalSeconds / 60)
	s := math.Floor(math.Mod(totalSeconds, 60))
	return fmt.Sprintf("%d:%02d", int64(m), int64(s))
}

// FormatDistance renders kilometers with one decimal, e.g. "5.2 km". Exact
// ties round up, so 5.25 renders "5.3 km".
func FormatDistance(km float64) string {
	return fixed1(km) + " km"
}

// fixed1 formats v with one decimal. Values whose exact binary value sits on
// a .x5 tie round toward +Inf; everything else rounds to nearest.
func fixed1(v float64) string {
	t := v * 10
	if t-math.Floor(t) == 0.5 && math.FMA(v, 10, -t) == 0 {
		return strconv.FormatFloat(math.Ceil(t)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// PaceMinPerKm returns minutes per kilometer, or 0 when distance is zero.
func PaceMinPerKm(totalSeconds, km float64) float64 {
	if km <= 0 {
		return 0
	}
	return (totalSeconds / 60) / km
}

// FormatPace renders minutes per kilometer as "M:SS /km".
func FormatPace(minPerKm float64) string {
	m := math.Floor(minPerKm)
	s := math.Floor((minPerKm - m) * 60)
	return fmt.Sprintf("%d:%02d /km", int64(m), int64(s))
}

// FormatBPM renders a heart rate value, e.g. "152 bpm".
func FormatBPM(v float64) string {
	return formatNumber(v) + " bpm"
}

// FormatCalories renders the calorie total as summed from the laps.
func FormatCalories(v float64) string {
	return formatNumber(v) + " kcal"
}

// FormatElevation rounds meters to the nearest integer, e.g. "110 m".
func FormatElevation(meters float64) string {
	return fmt.Sprintf("%d m", int64(math.Round(meters)))
}

// FormatCadence renders total steps per minute, e.g. "170 spm".
func FormatCadence(spm float64) string {
	return fmt.Sprintf("%d spm", int64(math.Round(spm)))
}

// FormatStartTime renders t in loc using StartTimeLayout.
func FormatStartTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(StartTimeLayout)
}

// FormatFileSize renders a byte count with a 1024 base, e.g. "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	v, i := float64(bytes), 0
	for v >= 1024 && i < len(sizes)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return formatNumber(v) + " " + sizes[i]
}

// formatNumber prints v without trailing zeros, so 12 renders as "12" and
// 12.5 as "12.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseNumber parses trimmed element text as a finite float.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// timeLayouts are tried in order when reading trackpoint times. Layouts
// without a zone are read in the aggregation location.
var timeLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
}

// parseTimestamp returns milliseconds since epoch for a date-time string.
func parseTimestamp(s string, loc *time.Location) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, l := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, loc)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
