package clock

import (
	"testing"
	"time"
)

func TestSetNowForTest(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	restore := SetNowForTest(func() time.Time { return fixed })
	if got := Now(); !got.Equal(fixed) {
		restore()
		t.Fatalf("want %v, got %v", fixed, got)
	}
	restore()
	if got := Now(); got.Equal(fixed) {
		t.Fatalf("restore must bring back the real clock")
	}
}

func TestStepper(t *testing.T) {
	start := time.Unix(0, 0)
	next := Stepper(start, time.Second, 3*time.Second)
	want := []time.Duration{0, time.Second, 4 * time.Second, 7 * time.Second}
	for i, w := range want {
		if got := next().Sub(start); got != w {
			t.Fatalf("call %d: want %v, got %v", i, w, got)
		}
	}
}
