// Package tcx parses Training Center XML activity files and derives the
// summary statistics and route shown for an uploaded activity.
package tcx

// RoutePoint is one sampled location along an activity.
type RoutePoint struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"` // meters
	Timestamp *int64   `json:"timestamp,omitempty"` // milliseconds since epoch
}

// Statistics is the display-ready summary of one activity file. Every
// numeric field is pre-formatted and falls back to a zero value such as
// "0 bpm", so callers never need to handle a missing metric.
type Statistics struct {
	FileName      string       `json:"fileName"`
	FileSize      int64        `json:"fileSize"`
	Duration      string       `json:"duration"`
	Distance      string       `json:"distance"`
	AvgPace       string       `json:"avgPace"`
	AvgHeartRate  string       `json:"avgHeartRate"`
	MaxHeartRate  string       `json:"maxHeartRate"`
	Calories      string       `json:"calories"`
	ElevationGain string       `json:"elevationGain"`
	AvgCadence    string       `json:"avgCadence"`
	Sport         string       `json:"sport"`
	StartTime     string       `json:"startTime"`
	Route         []RoutePoint `json:"routeData"`
}
