package lifecycle

import (
	"math"
	"time"
)

// HoursRemaining computes max(0, ceil(deadline - now)) in whole hours.
// A nil deadline reads as zero hours remaining.
func HoursRemaining(deadline *time.Time, now time.Time) int {
	if deadline == nil {
		return 0
	}
	remaining := deadline.Sub(now).Hours()
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// DeadlinePassed is a derived boolean, never a stored state.
func DeadlinePassed(deadline *time.Time, now time.Time) bool {
	return deadline != nil && now.After(*deadline)
}
