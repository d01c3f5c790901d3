package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	zap.L().Info("Creating user",
		zap.String("id", params.Id),
		zap.String("username", params.Username),
		zap.String("role", params.Role))

	now := time.Now()
	_, err := s.db.ExecContext(ctx, queryInsertUser,
		params.Id, params.FullName, params.Username, params.Email,
		params.PasswordHash, params.Role, now, now)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("%w: username %s", store.ErrDuplicateUser, params.Username)
		}
		zap.L().Error("Failed to insert user", zap.String("username", params.Username), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	return s.GetUserById(ctx, params.Id)
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByUsername, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, username)
		}
		zap.L().Error("Failed to query user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by username: %w", err)
	}
	return user, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Service) SetUserVerified(ctx context.Context, userId string, verified bool) error {
	result, err := s.db.ExecContext(ctx, querySetUserVerified, verified, time.Now(), userId)
	if err != nil {
		return fmt.Errorf("unable to update user verification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}

	zap.L().Info("User verification updated",
		zap.String("user_id", userId),
		zap.Bool("verified", verified))
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var earningsStr string
	err := row.Scan(&user.Id, &user.DisplayNumber, &user.FullName, &user.Username,
		&user.Email, &user.PasswordHash, &user.Role, &user.Verified,
		&earningsStr, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.TotalEarnings, err = decimal.NewFromString(earningsStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_earnings '%s': %w", earningsStr, err)
	}
	return &user, nil
}
