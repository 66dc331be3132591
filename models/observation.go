package models

import (
	"time"
)

// Observation is a single reading of current conditions at the farm
type Observation struct {
	Temperature float64   `json:"temperature"` // in Celsius
	Humidity    int       `json:"humidity"`    // percentage
	Timestamp   time.Time `json:"timestamp"`   // farm local civil time
	Provider    string    `json:"provider"`
	Location    string    `json:"location"`
}
