package auth

import (
	"math"
	"time"
)

// LockoutDecision is the outcome of EvaluateLockout.
type LockoutDecision struct {
	Locked           bool
	RemainingMinutes int // >= 1 when Locked
}

// EvaluateLockout decides whether an account may attempt a login at now.
// A nil or elapsed lockoutUntil allows the attempt.
func EvaluateLockout(lockoutUntil *time.Time, now time.Time) LockoutDecision {
	if lockoutUntil == nil || !lockoutUntil.After(now) {
		return LockoutDecision{}
	}
	remaining := lockoutUntil.Sub(now)
	return LockoutDecision{
		Locked:           true,
		RemainingMinutes: int(math.Ceil(remaining.Seconds() / 60)),
	}
}
