package tcx

import (
	"math"
	"time"
)

// DefaultSport is used when the file has no Activity element or no Sport attribute.
const DefaultSport = "Running"

// Option configures Aggregate.
type Option func(*aggregator)

// WithClock sets the clock used for the start time when no trackpoint has a time.
func WithClock(now func() time.Time) Option {
	return func(a *aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLocation sets the location used to read zoneless times and to render
// the start time.
func WithLocation(loc *time.Location) Option {
	return func(a *aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

type aggregator struct {
	now func() time.Time
	loc *time.Location
}

// lapTotals accumulates Lap summaries across the whole document.
type lapTotals struct {
	distanceKm float64
	seconds    float64
	calories   float64
	avgHRSum   float64
	avgHRCount int
	maxHR      float64
}

// Aggregate walks a parsed document and builds its statistics. It never
// fails: missing or unparseable fields fall back to zero contributions.
func Aggregate(doc *Document, fileName string, fileSize int64, opts ...Option) *Statistics {
	a := &aggregator{now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(a)
	}

	route, cadence := a.trackpoints(doc)
	laps := sumLaps(doc)

	sport := DefaultSport
	if act := doc.Find("Activity"); act != nil {
		if s, ok := act.Attr("Sport"); ok && s != "" {
			sport = s
		}
	}

	avgHR := 0.0
	if laps.avgHRCount > 0 {
		avgHR = math.Round(laps.avgHRSum / float64(laps.avgHRCount))
	}

	avgCadence := 0.0
	if len(cadence) > 0 {
		sum := 0.0
		for _, c := range cadence {
			sum += c
		}
		// per-leg cadence, reported as total steps per minute
		avgCadence = sum / float64(len(cadence)) * 2
	}

	// a first timestamp at the epoch counts as missing
	start := a.now()
	if len(route) > 0 && route[0].Timestamp != nil && *route[0].Timestamp != 0 {
		start = time.UnixMilli(*route[0].Timestamp)
	}

	return &Statistics{
		FileName:      fileName,
		FileSize:      fileSize,
		Duration:      FormatDuration(laps.seconds),
		Distance:      FormatDistance(laps.distanceKm),
		AvgPace:       FormatPace(PaceMinPerKm(laps.seconds, laps.distanceKm)),
		AvgHeartRate:  FormatBPM(avgHR),
		MaxHeartRate:  FormatBPM(laps.maxHR),
		Calories:      FormatCalories(laps.calories),
		ElevationGain: FormatElevation(ElevationGain(route)),
		AvgCadence:    FormatCadence(avgCadence),
		Sport:         sport,
		StartTime:     FormatStartTime(start, a.loc),
		Route:         route,
	}
}

// trackpoints collects route points and positive cadence samples from every
// Trackpoint in document order, regardless of lap nesting.
func (a *aggregator) trackpoints(doc *Document) ([]RoutePoint, []float64) {
	route := []RoutePoint{}
	var cadence []float64

	for _, tp := range doc.FindAll("Trackpoint") {
		if pt, ok := a.routePoint(tp); ok {
			route = append(route, pt)
		}

		if ext := tp.Find("Extensions"); ext != nil {
			if c, ok := parseNumber(ext.Find("RunCadence").Text()); ok && c > 0 {
				cadence = append(cadence, c)
			}
		}
	}
	return route, cadence
}

func (a *aggregator) routePoint(tp *Element) (RoutePoint, bool) {
	pos := tp.Find("Position")
	if pos == nil {
		return RoutePoint{}, false
	}
	lat, ok := parseNumber(pos.Find("LatitudeDegrees").Text())
	if !ok {
		return RoutePoint{}, false
	}
	lng, ok := parseNumber(pos.Find("LongitudeDegrees").Text())
	if !ok {
		return RoutePoint{}, false
	}

	pt := RoutePoint{Lat: lat, Lng: lng}
	if ele, ok := parseNumber(tp.Find("AltitudeMeters").Text()); ok {
		pt.Elevation = &ele
	}
	if ts, ok := parseTimestamp(tp.Find("Time").Text(), a.loc); ok {
		pt.Timestamp = &ts
	}
	return pt, true
}

// sumLaps accumulates every Lap element in document order at any depth.
func sumLaps(doc *Document) lapTotals {
	var t lapTotals
	for _, lap := range doc.FindAll("Lap") {
		if v, ok := parseNumber(lap.Find("DistanceMeters").Text()); ok {
			t.distanceKm += v / 1000
		}
		if v, ok := parseNumber(lap.Find("TotalTimeSeconds").Text()); ok {
			t.seconds += v
		}
		if v, ok := parseNumber(lap.Find("Calories").Text()); ok {
			t.calories += v
		}
		if v, ok := parseNumber(lap.Find("AverageHeartRateBpm").Find("Value").Text()); ok {
			t.avgHRSum += v
			t.avgHRCount++
		}
		if v, ok := parseNumber(lap.Find("MaximumHeartRateBpm").Find("Value").Text()); ok {
			t.maxHR = math.Max(t.maxHR, v)
		}
	}
	return t
}

// ElevationGain is the spread between the lowest and highest elevation on
// the route. The first point seeds both bounds (0 when it has no
// elevation), and routes with fewer than two points have no gain.
func ElevationGain(route []RoutePoint) float64 {
	if len(route) < 2 {
		return 0
	}
	var lo, hi float64
	if route[0].Elevation != nil {
		lo, hi = *route[0].Elevation, *route[0].Elevation
	}
	for _, p := range route {
		if p.Elevation == nil {
			continue
		}
		lo = math.Min(lo, *p.Elevation)
		hi = math.Max(hi, *p.Elevation)
	}
	return math.Max(0, hi-lo)
}
