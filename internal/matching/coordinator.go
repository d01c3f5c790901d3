// Package matching implements the admin-driven pairing of giver and receiver
// activities and the lifecycle operations around a payment match.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mutual-aid-go/internal/cycle"
	"mutual-aid-go/internal/maturity"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation and precondition errors surfaced by the coordinator.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotMature     = errors.New("giver activity has not matured")
	ErrCycleBlocked  = errors.New("cycle gate does not allow this action")
	ErrWrongReceiver = errors.New("caller is not the receiver of this match")
)

// Coordinator owns no state beyond the scope of a single operation; every
// transition is a read-modify-write against the store.
type Coordinator struct {
	store store.AidStore
}

func NewCoordinator(s store.AidStore) *Coordinator {
	return &Coordinator{store: s}
}

// RegisterOffer creates an active giver activity for the user, with the
// maturity date derived from the package duration.
func (c *Coordinator) RegisterOffer(ctx context.Context, userId, packageId string) (*models.HelpActivity, error) {
	return c.registerActivity(ctx, userId, packageId, models.RoleGiver)
}

// RegisterReceive creates an active receiver activity. The cycle gate must
// allow receiving, which requires a mature giver activity.
func (c *Coordinator) RegisterReceive(ctx context.Context, userId, packageId string) (*models.HelpActivity, error) {
	activities, err := c.store.GetUserActivities(ctx, userId)
	if err != nil {
		return nil, err
	}
	if actions := cycle.Gate(activities, time.Now()); !actions.CanReceiveHelp {
		return nil, fmt.Errorf("%w: receive help is not unlocked", ErrCycleBlocked)
	}
	return c.registerActivity(ctx, userId, packageId, models.RoleReceiver)
}

func (c *Coordinator) registerActivity(ctx context.Context, userId, packageId, role string) (*models.HelpActivity, error) {
	if packageId == "" {
		return nil, fmt.Errorf("%w: packageId is required", ErrValidation)
	}

	pkg, err := c.store.GetPackageById(ctx, packageId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown package %s", ErrValidation, packageId)
		}
		return nil, err
	}
	if !pkg.Active {
		return nil, fmt.Errorf("%w: package %s is not available", ErrValidation, packageId)
	}

	return c.store.CreateActivity(ctx, store.CreateActivityParams{
		UserId:       userId,
		Role:         role,
		PackageId:    pkg.Id,
		Amount:       pkg.Amount,
		MaturityDate: time.Now().AddDate(0, 0, pkg.DurationDays),
	})
}

// UserActions runs the cycle gate over the user's activities.
func (c *Coordinator) UserActions(ctx context.Context, userId string) (cycle.Actions, error) {
	activities, err := c.store.GetUserActivities(ctx, userId)
	if err != nil {
		return cycle.Actions{}, err
	}
	return cycle.Gate(activities, time.Now()), nil
}

// CreateMatch pairs a mature giver activity with an active receiver activity.
// The amount and package of the request must agree with both activities; a
// mismatch is rejected rather than silently patched. The store makes the
// double transition atomic.
func (c *Coordinator) CreateMatch(ctx context.Context, giverActivityId, receiverActivityId string, amount decimal.Decimal, packageId string) (*models.PaymentMatch, error) {
	giver, err := c.store.GetActivityById(ctx, giverActivityId)
	if err != nil {
		return nil, err
	}
	receiver, err := c.store.GetActivityById(ctx, receiverActivityId)
	if err != nil {
		return nil, err
	}

	if giver.Role() != models.RoleGiver {
		return nil, fmt.Errorf("%w: activity %s is not a giver activity", ErrValidation, giverActivityId)
	}
	if receiver.Role() != models.RoleReceiver {
		return nil, fmt.Errorf("%w: activity %s is not a receiver activity", ErrValidation, receiverActivityId)
	}
	if giver.UserId() == receiver.UserId() {
		return nil, fmt.Errorf("%w: cannot match a user with themselves", ErrValidation)
	}

	// Maturity is monotonic, so checking it before the transaction is safe:
	// a mature activity cannot become immature while the match commits.
	eval := maturity.Evaluate(giver, time.Now())
	if !eval.Eligible {
		return nil, fmt.Errorf("%w: giver activity is %s, want active", store.ErrInvalidTransition, giver.Status)
	}
	if !eval.Mature {
		return nil, fmt.Errorf("%w: %d seconds remaining", ErrNotMature, eval.SecondsUntilMature)
	}

	for _, activity := range []*models.HelpActivity{giver, receiver} {
		if activity.PackageId != packageId {
			return nil, fmt.Errorf("%w: activity %s belongs to package %s, not %s",
				ErrValidation, activity.Id, activity.PackageId, packageId)
		}
		if !activity.Amount.Equal(amount) {
			return nil, fmt.Errorf("%w: activity %s amount is %s, not %s",
				ErrValidation, activity.Id, activity.Amount.String(), amount.String())
		}
	}

	match, err := c.store.CreateMatch(ctx, store.CreateMatchParams{
		GiverActivityId:    giverActivityId,
		ReceiverActivityId: receiverActivityId,
		PackageId:          packageId,
		Amount:             amount,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Match created by coordinator",
		zap.String("match_id", match.Id),
		zap.String("giver_user_id", giver.UserId()),
		zap.String("receiver_user_id", receiver.UserId()))
	return match, nil
}

// ConfirmMatch marks a pending match as paid. Confirming twice is an error.
func (c *Coordinator) ConfirmMatch(ctx context.Context, matchId string) (*models.PaymentMatch, error) {
	return c.store.ConfirmMatch(ctx, matchId)
}

// AcknowledgeReceipt is called by the receiving user once the payment landed.
// It completes the cycle: match and activities close, and the former receiver
// gets a fresh giver activity.
func (c *Coordinator) AcknowledgeReceipt(ctx context.Context, matchId, userId string) (*store.CompleteCycleResult, error) {
	match, err := c.store.GetMatchById(ctx, matchId)
	if err != nil {
		return nil, err
	}

	receiverActivity, err := c.store.GetActivityById(ctx, match.ReceiverActivityId)
	if err != nil {
		return nil, err
	}
	if receiverActivity.ReceiverId != userId {
		return nil, fmt.Errorf("%w: match %s", ErrWrongReceiver, matchId)
	}

	return c.store.CompleteCycle(ctx, matchId, time.Now())
}

// CompleteCycle is the admin entrypoint for closing a confirmed match without
// a receiver acknowledgment (e.g. when receipt was verified out of band).
func (c *Coordinator) CompleteCycle(ctx context.Context, matchId string) (*store.CompleteCycleResult, error) {
	return c.store.CompleteCycle(ctx, matchId, time.Now())
}

// CurrentMatch returns the user's open match and their side of it.
func (c *Coordinator) CurrentMatch(ctx context.Context, userId string) (*models.PaymentMatch, string, error) {
	return c.store.GetCurrentMatchForUser(ctx, userId)
}
