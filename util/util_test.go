package util

import (
	"testing"
	"time"
)

func TestSkipThrottler(t *testing.T) {
	t.Parallel()
	clock := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tt := NewSkipThrottler(time.Minute)
	tt.now = func() time.Time { return clock }

	steps := []struct {
		advance time.Duration
		ok      bool
	}{
		{advance: 0, ok: true},
		{advance: time.Second, ok: false},
		{advance: 58 * time.Second, ok: false},
		{advance: time.Second, ok: true},
		{advance: 30 * time.Second, ok: false},
		{advance: 2 * time.Minute, ok: true},
	}
	for i, s := range steps {
		clock = clock.Add(s.advance)
		if ok := tt.Ok(); ok != s.ok {
			t.Fatalf("%d %v, expected %v", i, ok, s.ok)
		}
	}
}
