package clock

import "time"

// Precision of stored timestamps. Durable data holds millisecond ISO strings.
const Precision = time.Millisecond

// SystemClock returns the current wall-clock time in UTC.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(Precision) }
