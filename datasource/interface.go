package datasource

import (
	"context"
	"fmt"

	"farm-weather-alert/models"
)

// Location is a point on the map, in decimal degrees
type Location struct {
	Latitude  float64
	Longitude float64
}

// String formats the location as "lat,lon", which WeatherAPI.com also accepts as a query
func (l Location) String() string {
	return fmt.Sprintf("%g,%g", l.Latitude, l.Longitude)
}

// WeatherSource defines the interface for any current-conditions provider
type WeatherSource interface {
	// Name returns the provider's name
	Name() string

	// FetchObservation fetches current temperature and humidity for a location
	FetchObservation(ctx context.Context, loc Location) (models.Observation, error)
}
