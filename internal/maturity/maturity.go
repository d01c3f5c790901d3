// Package maturity is the single place that decides whether a giver activity
// has finished its holding period. Every caller (cycle gate, matching
// coordinator, HTTP handlers) goes through Evaluate instead of comparing
// maturity dates inline.
package maturity

import (
	"time"

	"mutual-aid-go/internal/models"
)

// Evaluation is the result of checking a giver activity against a point in
// time. Eligible is false when there is no active giver activity to evaluate,
// which is a different state from "not yet mature".
type Evaluation struct {
	Eligible           bool
	Mature             bool
	SecondsUntilMature int64
}

// Evaluate computes whether an active giver activity has matured at the given
// time. SecondsUntilMature is clamped to zero once mature. The result is
// monotonic: for a fixed activity, Mature never flips back to false as now
// advances.
func Evaluate(activity *models.HelpActivity, now time.Time) Evaluation {
	if activity == nil || activity.Role() != models.RoleGiver || activity.Status != models.ActivityActive {
		return Evaluation{}
	}

	remaining := activity.MaturityDate.Sub(now)
	if remaining <= 0 {
		return Evaluation{Eligible: true, Mature: true}
	}

	return Evaluation{
		Eligible:           true,
		SecondsUntilMature: int64(remaining.Round(time.Second).Seconds()),
	}
}
