package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var percentDivisor = decimal.NewFromInt(100)

// CreateMatch atomically transitions both activities from active to matched
// and inserts a pending payment match referencing them. If any guarded update
// misses (the row changed status underneath us) the whole transaction rolls
// back and nothing is mutated.
func (s *Service) CreateMatch(ctx context.Context, params store.CreateMatchParams) (*models.PaymentMatch, error) {
	zap.L().Info("Creating payment match",
		zap.String("giver_activity_id", params.GiverActivityId),
		zap.String("receiver_activity_id", params.ReceiverActivityId),
		zap.String("amount", params.Amount.String()),
		zap.String("package_id", params.PackageId))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	giver, err := getActivityTx(ctx, tx, params.GiverActivityId)
	if err != nil {
		return nil, err
	}
	receiver, err := getActivityTx(ctx, tx, params.ReceiverActivityId)
	if err != nil {
		return nil, err
	}

	if giver.Status != models.ActivityActive {
		return nil, fmt.Errorf("%w: giver activity is %s, want active", store.ErrInvalidTransition, giver.Status)
	}
	if receiver.Status != models.ActivityActive {
		return nil, fmt.Errorf("%w: receiver activity is %s, want active", store.ErrInvalidTransition, receiver.Status)
	}

	if err := guardedUpdate(ctx, tx, queryMarkActivityMatched, now, giver.Id); err != nil {
		return nil, fmt.Errorf("giver activity: %w", err)
	}
	if err := guardedUpdate(ctx, tx, queryMarkActivityMatched, now, receiver.Id); err != nil {
		return nil, fmt.Errorf("receiver activity: %w", err)
	}

	matchId := uuid.New().String()
	_, err = tx.ExecContext(ctx, queryInsertMatch,
		matchId, giver.Id, receiver.Id, params.PackageId,
		params.Amount.String(), now, now)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("%w: activity already linked to an open match", store.ErrConcurrentModification)
		}
		return nil, fmt.Errorf("failed to insert payment match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Payment match created",
		zap.String("match_id", matchId),
		zap.String("giver_activity_id", giver.Id),
		zap.String("receiver_activity_id", receiver.Id))

	return s.GetMatchById(ctx, matchId)
}

// ConfirmMatch transitions a match from pending to confirmed. A second
// confirmation is rejected, never silently accepted.
func (s *Service) ConfirmMatch(ctx context.Context, matchId string) (*models.PaymentMatch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := getMatchTx(ctx, tx, matchId)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchPending {
		return nil, fmt.Errorf("%w: match is %s, want pending", store.ErrInvalidTransition, match.Status)
	}

	if err := guardedUpdate(ctx, tx, queryConfirmMatch, time.Now(), matchId); err != nil {
		return nil, fmt.Errorf("match %s: %w", matchId, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Payment match confirmed", zap.String("match_id", matchId))
	return s.GetMatchById(ctx, matchId)
}

// CompleteCycle closes a confirmed match: the match and both activities become
// completed, the receiver's earnings grow by amount plus the package return,
// and the former receiver re-enters the cycle as a giver. When the receiver
// still holds an active giver row (the row whose maturity unlocked receiving),
// that row stays in place and no second one is created; otherwise a fresh
// active giver activity is inserted. This is the only place the system
// auto-creates an activity.
func (s *Service) CompleteCycle(ctx context.Context, matchId string, now time.Time) (*store.CompleteCycleResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := getMatchTx(ctx, tx, matchId)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchConfirmed {
		return nil, fmt.Errorf("%w: match is %s, want confirmed", store.ErrInvalidTransition, match.Status)
	}

	if err := guardedUpdate(ctx, tx, queryCompleteMatch, now, matchId); err != nil {
		return nil, fmt.Errorf("match %s: %w", matchId, err)
	}
	if err := guardedUpdate(ctx, tx, queryMarkActivityCompleted, now, match.GiverActivityId); err != nil {
		return nil, fmt.Errorf("giver activity: %w", err)
	}
	if err := guardedUpdate(ctx, tx, queryMarkActivityCompleted, now, match.ReceiverActivityId); err != nil {
		return nil, fmt.Errorf("receiver activity: %w", err)
	}

	receiverActivity, err := getActivityTx(ctx, tx, match.ReceiverActivityId)
	if err != nil {
		return nil, err
	}
	receiverUserId := receiverActivity.ReceiverId

	pkg, err := getPackageTx(ctx, tx, match.PackageId)
	if err != nil {
		return nil, err
	}

	// Credit the receiver: amount plus the package return percentage
	earned := match.Amount.Add(match.Amount.Mul(pkg.ReturnPercent).Div(percentDivisor))
	if err := addEarningsTx(ctx, tx, receiverUserId, earned, now); err != nil {
		return nil, err
	}

	// The former receiver re-enters the cycle as a giver. Their existing
	// active giver row, if any, is the continuation; otherwise insert one.
	var nextActivityId string
	err = tx.QueryRowContext(ctx, queryCheckActiveGiver, receiverUserId).Scan(&nextActivityId)
	if errors.Is(err, sql.ErrNoRows) {
		nextActivityId = uuid.New().String()
		maturityDate := now.AddDate(0, 0, pkg.DurationDays)
		_, err = tx.ExecContext(ctx, queryInsertActivity,
			nextActivityId, receiverUserId, nil, pkg.Id,
			match.Amount.String(), now, maturityDate, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create next giver activity: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check existing giver activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Cycle completed",
		zap.String("match_id", matchId),
		zap.String("receiver_user_id", receiverUserId),
		zap.String("earned", earned.String()),
		zap.String("next_giver_activity_id", nextActivityId))

	completedMatch, err := s.GetMatchById(ctx, matchId)
	if err != nil {
		return nil, err
	}
	nextActivity, err := s.GetActivityById(ctx, nextActivityId)
	if err != nil {
		return nil, err
	}

	return &store.CompleteCycleResult{
		Match:             completedMatch,
		NextGiverActivity: nextActivity,
	}, nil
}

func (s *Service) GetMatchById(ctx context.Context, matchId string) (*models.PaymentMatch, error) {
	match, err := scanMatch(s.db.QueryRowContext(ctx, queryGetMatchById, matchId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", store.ErrNotFound, matchId)
		}
		return nil, fmt.Errorf("unable to query match: %w", err)
	}
	return match, nil
}

// GetOpenMatchForActivity returns the non-terminal match referencing the
// activity. The partial unique indexes guarantee at most one exists.
func (s *Service) GetOpenMatchForActivity(ctx context.Context, activityId string) (*models.PaymentMatch, error) {
	match, err := scanMatch(s.db.QueryRowContext(ctx, queryGetOpenMatchForActivity, activityId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no open match for activity %s", store.ErrNotFound, activityId)
		}
		return nil, fmt.Errorf("unable to query open match: %w", err)
	}
	return match, nil
}

// GetCurrentMatchForUser returns the user's non-terminal match and which side
// of it they are on. When the user holds both an open giver-side and an open
// receiver-side match, the receiver side is returned.
func (s *Service) GetCurrentMatchForUser(ctx context.Context, userId string) (*models.PaymentMatch, string, error) {
	var match models.PaymentMatch
	var amountStr, role string
	err := s.db.QueryRowContext(ctx, queryGetCurrentMatchForUser, userId).Scan(
		&match.Id, &match.GiverActivityId, &match.ReceiverActivityId,
		&match.PackageId, &amountStr, &match.Status,
		&match.CreatedAt, &match.UpdatedAt, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", fmt.Errorf("%w: no open match for user %s", store.ErrNotFound, userId)
		}
		return nil, "", fmt.Errorf("unable to query current match: %w", err)
	}

	match.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return &match, role, nil
}

// guardedUpdate runs a status-guarded UPDATE and fails with
// ErrConcurrentModification when the guard did not hold.
func guardedUpdate(ctx context.Context, tx *sql.Tx, query string, now time.Time, id string) error {
	result, err := tx.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("guarded update failed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrConcurrentModification
	}
	return nil
}

func getActivityTx(ctx context.Context, tx *sql.Tx, activityId string) (*models.HelpActivity, error) {
	activity, err := scanActivity(tx.QueryRowContext(ctx, queryGetActivityById, activityId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", store.ErrNotFound, activityId)
		}
		return nil, fmt.Errorf("unable to query activity: %w", err)
	}
	return activity, nil
}

func getMatchTx(ctx context.Context, tx *sql.Tx, matchId string) (*models.PaymentMatch, error) {
	match, err := scanMatch(tx.QueryRowContext(ctx, queryGetMatchById, matchId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", store.ErrNotFound, matchId)
		}
		return nil, fmt.Errorf("unable to query match: %w", err)
	}
	return match, nil
}

func getPackageTx(ctx context.Context, tx *sql.Tx, packageId string) (*models.Package, error) {
	pkg, err := scanPackage(tx.QueryRowContext(ctx, queryGetPackageById, packageId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: package %s", store.ErrNotFound, packageId)
		}
		return nil, fmt.Errorf("unable to query package: %w", err)
	}
	return pkg, nil
}

func addEarningsTx(ctx context.Context, tx *sql.Tx, userId string, earned decimal.Decimal, now time.Time) error {
	var earningsStr string
	err := tx.QueryRowContext(ctx, queryGetUserEarnings, userId).Scan(&earningsStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
		}
		return fmt.Errorf("unable to query earnings: %w", err)
	}

	current, err := decimal.NewFromString(earningsStr)
	if err != nil {
		return fmt.Errorf("failed to parse total_earnings '%s': %w", earningsStr, err)
	}

	_, err = tx.ExecContext(ctx, queryUpdateUserEarnings, current.Add(earned).String(), now, userId)
	if err != nil {
		return fmt.Errorf("unable to update earnings: %w", err)
	}
	return nil
}

func scanMatch(row rowScanner) (*models.PaymentMatch, error) {
	var match models.PaymentMatch
	var amountStr string
	err := row.Scan(&match.Id, &match.GiverActivityId, &match.ReceiverActivityId,
		&match.PackageId, &amountStr, &match.Status,
		&match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		return nil, err
	}

	match.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return &match, nil
}
