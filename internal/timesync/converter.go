package timesync

import (
	"fmt"
	"time"

	"github.com/mrzor/tracelog/internal/wire"
)

// Converter maps trace timestamps to wall-clock time.
type Converter struct {
	epoch time.Time
}

// NewConverter creates a converter anchored at epoch.
func NewConverter(epoch time.Time) *Converter {
	return &Converter{epoch: epoch}
}

// ToWallClock converts a trace timestamp (microseconds since the trace
// origin) to wall-clock time.
func (c *Converter) ToWallClock(ts wire.Microseconds) time.Time {
	return c.epoch.Add(time.Duration(ts) * time.Microsecond)
}

// Epoch returns the wall-clock time of trace timestamp 0.
func (c *Converter) Epoch() time.Time {
	return c.epoch
}

// ParseEpoch parses an RFC 3339 epoch. An empty string means now.
func ParseEpoch(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	epoch, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse epoch %q: %w", s, err)
	}
	return epoch, nil
}
