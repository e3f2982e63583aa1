// Package clock provides the wall-clock implementation of the Clock service.
package clock

import (
	"time"

	"chrono/internal/domain/service"
)

// systemClock reads the system wall clock.
type systemClock struct{}

// NewSystemClock is the constructor for systemClock.
func NewSystemClock() service.Clock {
	return &systemClock{}
}

// Now returns the current wall-clock instant.
func (systemClock) Now() time.Time {
	return time.Now()
}
