package clip

import "time"

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces citation and article identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
