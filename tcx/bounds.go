package tcx

import "github.com/golang/geo/s2"

// LatLng is a plain coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the smallest lat/lng rectangle containing a route. When
// the route crosses the antimeridian SouthWest.Lng is greater than
// NorthEast.Lng.
type BoundingBox struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
	Center    LatLng `json:"center"`
}

// Bounds returns the bounding box of the route's valid coordinates. ok is
// false when no point has a valid latitude and longitude.
func Bounds(route []RoutePoint) (box BoundingBox, ok bool) {
	rect := s2.EmptyRect()
	for _, p := range route {
		ll := s2.LatLngFromDegrees(p.Lat, p.Lng)
		if !ll.IsValid() {
			continue
		}
		rect = rect.AddPoint(ll)
	}
	if rect.IsEmpty() {
		return BoundingBox{}, false
	}

	lo, hi, c := rect.Lo(), rect.Hi(), rect.Center()
	return BoundingBox{
		SouthWest: LatLng{Lat: lo.Lat.Degrees(), Lng: lo.Lng.Degrees()},
		NorthEast: LatLng{Lat: hi.Lat.Degrees(), Lng: hi.Lng.Degrees()},
		Center:    LatLng{Lat: c.Lat.Degrees(), Lng: c.Lng.Degrees()},
	}, true
}
