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
	"go.uber.org/zap"
)

func (s *Service) UpsertPaymentAccount(ctx context.Context, params store.UpsertPaymentAccountParams) (*models.PaymentAccount, error) {
	if params.AccountName == "" || params.AccountNumber == "" || params.Provider == "" {
		return nil, fmt.Errorf("account name, number and provider cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, queryUpsertPaymentAccount,
		uuid.New().String(), params.UserId, params.AccountName,
		params.AccountNumber, params.Provider, time.Now())
	if err != nil {
		zap.L().Error("Failed to upsert payment account", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to upsert payment account: %w", err)
	}

	zap.L().Info("Payment account stored",
		zap.String("user_id", params.UserId),
		zap.String("provider", params.Provider))

	return s.GetPaymentAccount(ctx, params.UserId)
}

func (s *Service) GetPaymentAccount(ctx context.Context, userId string) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	err := s.db.QueryRowContext(ctx, queryGetPaymentAccount, userId).Scan(
		&account.Id, &account.UserId, &account.AccountName,
		&account.AccountNumber, &account.Provider, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment account for user %s", store.ErrNotFound, userId)
		}
		return nil, fmt.Errorf("unable to query payment account: %w", err)
	}
	return &account, nil
}
