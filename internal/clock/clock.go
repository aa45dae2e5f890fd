// Package clock is the time source for stream statistics.
package clock

import "time"

var nowFunc = time.Now

// Now returns the current time from the configured clock function.
func Now() time.Time {
	return nowFunc()
}

// SetNowForTest overrides the clock source and returns a restore function.
func SetNowForTest(fn func() time.Time) func() {
	previous := nowFunc
	nowFunc = fn
	return func() {
		nowFunc = previous
	}
}

// Stepper returns a clock function that advances by the given steps in turn,
// repeating the last step once exhausted.
func Stepper(start time.Time, steps ...time.Duration) func() time.Time {
	cur := start
	i := 0
	first := true
	return func() time.Time {
		if first {
			first = false
			return cur
		}
		if len(steps) > 0 {
			cur = cur.Add(steps[min(i, len(steps)-1)])
			i++
		}
		return cur
	}
}
