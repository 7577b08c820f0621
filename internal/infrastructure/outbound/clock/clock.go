package clock

import (
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ ports.Clock = (*UTCClock)(nil)

// UTCClock implements ports.Clock with the system clock in UTC, truncated to
// microseconds so values survive the SQLite text round trip unchanged.
type UTCClock struct{}

// New creates a new UTCClock.
func New() *UTCClock {
	return &UTCClock{}
}

func (c *UTCClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
