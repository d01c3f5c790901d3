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

// CreateActivity inserts an active help activity for one side of the cycle.
// The check-then-insert runs inside a transaction and the partial unique
// indexes back it up, so a user can never end up with two active rows for
// the same role.
func (s *Service) CreateActivity(ctx context.Context, params store.CreateActivityParams) (*models.HelpActivity, error) {
	if params.UserId == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	if params.Role != models.RoleGiver && params.Role != models.RoleReceiver {
		return nil, fmt.Errorf("unknown activity role: %q", params.Role)
	}

	zap.L().Info("Creating help activity",
		zap.String("user_id", params.UserId),
		zap.String("role", params.Role),
		zap.String("package_id", params.PackageId),
		zap.String("amount", params.Amount.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	checkQuery := queryCheckActiveGiver
	if params.Role == models.RoleReceiver {
		checkQuery = queryCheckActiveReceiver
	}

	var existingId string
	err = tx.QueryRowContext(ctx, checkQuery, params.UserId).Scan(&existingId)
	if err == nil {
		return nil, fmt.Errorf("%w: %s activity %s", store.ErrDuplicateActivity, params.Role, existingId)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing activity: %w", err)
	}

	var giverId, receiverId any
	if params.Role == models.RoleGiver {
		giverId = params.UserId
	} else {
		receiverId = params.UserId
	}

	activityId := uuid.New().String()
	now := time.Now()
	_, err = tx.ExecContext(ctx, queryInsertActivity,
		activityId, giverId, receiverId, params.PackageId,
		params.Amount.String(), now, params.MaturityDate, now)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("%w: %s role", store.ErrDuplicateActivity, params.Role)
		}
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Help activity created",
		zap.String("activity_id", activityId),
		zap.String("user_id", params.UserId),
		zap.String("role", params.Role),
		zap.Time("maturity_date", params.MaturityDate))

	return s.GetActivityById(ctx, activityId)
}

func (s *Service) GetActivityById(ctx context.Context, activityId string) (*models.HelpActivity, error) {
	activity, err := scanActivity(s.db.QueryRowContext(ctx, queryGetActivityById, activityId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", store.ErrNotFound, activityId)
		}
		return nil, fmt.Errorf("unable to query activity: %w", err)
	}
	return activity, nil
}

func (s *Service) GetUserActivities(ctx context.Context, userId string) ([]models.HelpActivity, error) {
	return s.queryActivities(ctx, queryGetUserActivities, userId)
}

func (s *Service) GetAllActivities(ctx context.Context) ([]models.HelpActivity, error) {
	return s.queryActivities(ctx, queryGetAllActivities)
}

func (s *Service) queryActivities(ctx context.Context, query string, args ...any) ([]models.HelpActivity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query activities", zap.Error(err))
		return nil, fmt.Errorf("unable to query activities: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var activities []models.HelpActivity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan activity row: %w", err)
		}
		activities = append(activities, *activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return activities, nil
}

func scanActivity(row rowScanner) (*models.HelpActivity, error) {
	var activity models.HelpActivity
	var giverId, receiverId sql.NullString
	var amountStr string
	err := row.Scan(&activity.Id, &giverId, &receiverId, &activity.PackageId,
		&amountStr, &activity.Status, &activity.AdminApproved,
		&activity.CreatedAt, &activity.MaturityDate, &activity.UpdatedAt)
	if err != nil {
		return nil, err
	}

	activity.GiverId = giverId.String
	activity.ReceiverId = receiverId.String
	activity.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return &activity, nil
}
