package tcx

import (
	"fmt"
	"strings"
)

// Row is one label/value line of a statistics display.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryRows returns the short summary shown right after an upload.
func SummaryRows(s *Statistics) []Row {
	return []Row{
		{Label: "Distance", Value: s.Distance},
		{Label: "Duration", Value: s.Duration},
		{Label: "Avg Pace", Value: s.AvgPace},
	}
}

// DetailRows returns the full statistics table.
func DetailRows(s *Statistics) []Row {
	return []Row{
		{Label: "File Name", Value: s.FileName},
		{Label: "File Size", Value: FormatFileSize(s.FileSize)},
		{Label: "Sport", Value: s.Sport},
		{Label: "Start Time", Value: s.StartTime},
		{Label: "Duration", Value: s.Duration},
		{Label: "Distance", Value: s.Distance},
		{Label: "Average Pace", Value: s.AvgPace},
		{Label: "Average Heart Rate", Value: s.AvgHeartRate},
		{Label: "Max Heart Rate", Value: s.MaxHeartRate},
		{Label: "Calories Burned", Value: s.Calories},
		{Label: "Elevation Gain", Value: s.ElevationGain},
		{Label: "Average Cadence", Value: s.AvgCadence},
	}
}

// FormatRunLog generates a plain-text run log for an activity
func FormatRunLog(s *Statistics) string {
	var b strings.Builder

	b.WriteString("## Run Log\n")
	fmt.Fprintf(&b, "- **Type:** [%s] %s\n", s.Sport, s.FileName)
	fmt.Fprintf(&b, "- **When:** %s\n", s.StartTime)
	fmt.Fprintf(&b, "- **Duration:** %s\n", s.Duration)
	fmt.Fprintf(&b, "- **Distance:** %s (elev %s)\n", s.Distance, s.ElevationGain)
	fmt.Fprintf(&b, "- **Avg Pace:** %s\n", s.AvgPace)
	fmt.Fprintf(&b, "- **Avg HR:** %s (max %s)\n", s.AvgHeartRate, s.MaxHeartRate)
	fmt.Fprintf(&b, "- **Cadence:** %s\n", s.AvgCadence)
	fmt.Fprintf(&b, "- **Calories:** %s\n", s.Calories)
	fmt.Fprintf(&b, "- **Route:** %d points\n", len(s.Route))

	b.WriteString("\n")
	b.WriteString(FormatRows(DetailRows(s)))
	return b.String()
}

// FormatRows renders rows as a two-column table.
func FormatRows(rows []Row) string {
	var b strings.Builder
	b.WriteString("Stat | Value\n")
	b.WriteString("-----|------\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s | %s\n", r.Label, r.Value)
	}
	return b.String()
}
