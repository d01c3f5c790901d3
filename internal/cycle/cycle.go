// Package cycle derives which actions a user may currently take from the full
// set of their help activities. The derivation is total: every combination of
// activities maps to a result, and a user with no activities gets the
// start-fresh state rather than an error.
package cycle

import (
	"time"

	"mutual-aid-go/internal/maturity"
	"mutual-aid-go/internal/models"
)

// Actions reports what the user can do next.
type Actions struct {
	CanOfferHelp       bool
	CanReceiveHelp     bool
	SecondsUntilMature int64
}

// ActiveByRole returns the user's active activity for the given role, or nil.
// The write path guarantees at most one exists.
func ActiveByRole(activities []models.HelpActivity, role string) *models.HelpActivity {
	for i := range activities {
		if activities[i].Status == models.ActivityActive && activities[i].Role() == role {
			return &activities[i]
		}
	}
	return nil
}

// Gate computes the allowed actions:
//   - an active receiver activity means the user is mid-cycle, both actions off
//   - an active giver activity allows receiving once it matures, and blocks a
//     second concurrent offer
//   - no active activity of either role means the user starts fresh with an
//     offer
func Gate(activities []models.HelpActivity, now time.Time) Actions {
	if ActiveByRole(activities, models.RoleReceiver) != nil {
		return Actions{}
	}

	if giver := ActiveByRole(activities, models.RoleGiver); giver != nil {
		eval := maturity.Evaluate(giver, now)
		return Actions{
			CanReceiveHelp:     eval.Mature,
			SecondsUntilMature: eval.SecondsUntilMature,
		}
	}

	return Actions{CanOfferHelp: true}
}
