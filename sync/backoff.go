package sync

import "time"

// nextInterval picks the delay before the next cycle: back to base when the
// last cycle moved data, straight to max when idle, and doubling toward max
// after a failure.
func nextInterval(current, base, max time.Duration, hadWork bool, failed bool) time.Duration {
	switch {
	case failed:
		next := current * 2
		if next < base {
			next = base
		}
		if next > max {
			next = max
		}
		return next
	case hadWork:
		return base
	default:
		return max
	}
}
