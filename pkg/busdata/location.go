package busdata

import "github.com/Dhinesh71/bustrackingsystem/pkg/geo"

type Location struct {
	Latitude  float64 `groups:"basic" json:"latitude"`
	Longitude float64 `groups:"basic" json:"longitude"`
}

// Distance returns the great-circle distance to the other location in km.
func (l *Location) Distance(other *Location) float64 {
	return geo.Distance(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

// Bearing returns the initial bearing towards the other location in degrees [0, 360).
func (l *Location) Bearing(other *Location) float64 {
	return geo.Bearing(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}
