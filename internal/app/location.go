package app

import (
	"fmt"
	"time"
)

// UnknownPlace is the place name used when a location could not be resolved.
const UnknownPlace = "Unknown"

// Location is a geographic position with a human readable place name.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// IsZero reports whether the location has no coordinates.
func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

func (l Location) String() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// Fix is a position reported by a location device.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // meters
	Time      time.Time `json:"time"`
}

// IsZero reports whether the fix has no coordinates.
func (f Fix) IsZero() bool {
	return f.Latitude == 0 && f.Longitude == 0
}

// Location returns the fix as location without a place name.
func (f Fix) Location() Location {
	return Location{Latitude: f.Latitude, Longitude: f.Longitude}
}
