package tcx

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		sec      float64
		expected string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{59.9, "0:59"},  // seconds are floored
		{900, "15:00"},  // 15 minutes
		{1500, "25:00"}, // 25 minutes
		{3661, "61:01"}, // minutes are not folded into hours
	}

	for _, tt := range tests {
		result := FormatDuration(tt.sec)
		if result != tt.expected {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.sec, result, tt.expected)
		}
	}
}

func TestPaceMinPerKm(t *testing.T) {
	tests := []struct {
		seconds  float64
		km       float64
		expected string
	}{
		{1500, 5, "5:00 /km"},  // 25 min over 5km
		{900, 3, "5:00 /km"},   // 15 min over 3km
		{330, 1, "5:30 /km"},   // 5.5 min/km
		{1500, 0, "0:00 /km"},  // zero distance
		{0, 0, "0:00 /km"},     // nothing recorded
		{1000, 3, "5:33 /km"},  // 5.555 min/km, seconds floored
	}

	for _, tt := range tests {
		result := FormatPace(PaceMinPerKm(tt.seconds, tt.km))
		if result != tt.expected {
			t.Errorf("pace(%v s, %v km) = %s, want %s", tt.seconds, tt.km, result, tt.expected)
		}
	}
}

func TestFormatNumbers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatDistance(0), "0.0 km"},
		{FormatDistance(3), "3.0 km"},
		{FormatDistance(5.26), "5.3 km"},
		{FormatDistance(5250.0 / 1000), "5.3 km"},
		{FormatDistance(2250.0 / 1000), "2.3 km"},
		{FormatDistance(250.0 / 1000), "0.3 km"},
		{FormatDistance(150.0 / 1000), "0.1 km"},
		{FormatDistance(10.05), "10.1 km"},
		{FormatBPM(0), "0 bpm"},
		{FormatBPM(172), "172 bpm"},
		{FormatCalories(185), "185 kcal"},
		{FormatCalories(12.5), "12.5 kcal"},
		{FormatElevation(110.4), "110 m"},
		{FormatElevation(0), "0 m"},
		{FormatCadence(160), "160 spm"},
		{FormatCadence(161.5), "162 spm"},
	}

	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, tt.got, tt.want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 Bytes"},
		{500, "500 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
	}

	for _, tt := range tests {
		result := FormatFileSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("FormatFileSize(%d) = %s, want %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestFormatStartTime(t *testing.T) {
	ts := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	if got := FormatStartTime(ts, time.UTC); got != "3/10/2024, 3:04:05 PM" {
		t.Errorf("FormatStartTime = %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in string
		v  float64
		ok bool
	}{
		{"42", 42, true},
		{"  47.6062\n", 47.6062, true},
		{"-122.3", -122.3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		v, ok := parseNumber(tt.in)
		if ok != tt.ok || v != tt.v {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tt.in, v, ok, tt.v, tt.ok)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ms int64
		ok bool
	}{
		{"2024-03-10T08:00:00Z", 1710057600000, true},
		{"2024-03-10T08:00:00.250Z", 1710057600250, true},
		{"2024-03-10T09:00:00+01:00", 1710057600000, true},
		{"2024-03-10T08:00:00", 1710057600000, true}, // zoneless, read in UTC below
		{"not-a-date", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		ms, ok := parseTimestamp(tt.in, time.UTC)
		if ok != tt.ok || ms != tt.ms {
			t.Errorf("parseTimestamp(%q) = %d, %v; want %d, %v", tt.in, ms, ok, tt.ms, tt.ok)
		}
	}
}
