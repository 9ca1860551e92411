package clock

import "time"

// Clock stamps membership records (createdAt, updatedAt).
// Tests swap in a manual implementation to control ordering.
type Clock interface {
	Now() time.Time
}
