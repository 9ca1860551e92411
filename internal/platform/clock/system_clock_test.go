package clock

import (
	"testing"
	"time"
)

func TestSystemClock_NowIsUTCAtMillisecondPrecision(t *testing.T) {
	t.Parallel()

	got := NewSystemClock().Now()
	if got.Location() != time.UTC {
		t.Fatalf("Now().Location()=%v, want UTC", got.Location())
	}
	if got.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("Now()=%v has sub-millisecond precision", got)
	}
	if d := time.Since(got); d < 0 || d > time.Minute {
		t.Fatalf("Now() is %v away from the wall clock", d)
	}
}
