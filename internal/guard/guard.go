// Package guard holds in-process admission checks: rate limits, circuit
// breakers and duplicate suppression.
package guard

import "time"

// Result reports whether a guarded action may proceed.
type Result struct {
	Allowed bool
	Reason  string
	Guard   string
}

func allow() Result { return Result{Allowed: true} }

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
