package service

import "time"

// Clock supplies the current instant. Change records capture statement time,
// not transaction start time, so that multiple mutations within one
// transaction still order correctly; injecting the clock also keeps session
// expiry checks deterministic in tests.
type Clock interface {
	// Now returns the current wall-clock instant of this statement.
	Now() time.Time
}
