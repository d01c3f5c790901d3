package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) UpsertPackage(ctx context.Context, pkg models.Package) error {
	if pkg.Id == "" || pkg.Name == "" {
		return fmt.Errorf("package id and name cannot be empty")
	}
	if !pkg.Amount.IsPositive() {
		return fmt.Errorf("package amount must be positive, got %s", pkg.Amount.String())
	}
	if pkg.DurationDays <= 0 {
		return fmt.Errorf("package duration must be positive, got %d", pkg.DurationDays)
	}

	_, err := s.db.ExecContext(ctx, queryUpsertPackage,
		pkg.Id, pkg.Name, pkg.Amount.String(), pkg.ReturnPercent.String(),
		pkg.DurationDays, pkg.Active)
	if err != nil {
		zap.L().Error("Failed to upsert package", zap.String("package_id", pkg.Id), zap.Error(err))
		return fmt.Errorf("unable to upsert package: %w", err)
	}

	zap.L().Info("Package stored",
		zap.String("package_id", pkg.Id),
		zap.String("name", pkg.Name),
		zap.String("amount", pkg.Amount.String()),
		zap.Int("duration_days", pkg.DurationDays))
	return nil
}

func (s *Service) GetPackages(ctx context.Context) ([]models.Package, error) {
	rows, err := s.db.QueryContext(ctx, queryGetPackages)
	if err != nil {
		return nil, fmt.Errorf("unable to query packages: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var packages []models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan package row: %w", err)
		}
		packages = append(packages, *pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating package rows: %w", err)
	}

	return packages, nil
}

func (s *Service) GetPackageById(ctx context.Context, packageId string) (*models.Package, error) {
	pkg, err := scanPackage(s.db.QueryRowContext(ctx, queryGetPackageById, packageId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: package %s", store.ErrNotFound, packageId)
		}
		return nil, fmt.Errorf("unable to query package: %w", err)
	}
	return pkg, nil
}

func scanPackage(row rowScanner) (*models.Package, error) {
	var pkg models.Package
	var amountStr, returnStr string
	err := row.Scan(&pkg.Id, &pkg.Name, &amountStr, &returnStr,
		&pkg.DurationDays, &pkg.Active, &pkg.CreatedAt)
	if err != nil {
		return nil, err
	}

	pkg.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	pkg.ReturnPercent, err = decimal.NewFromString(returnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse return_percent '%s': %w", returnStr, err)
	}
	return &pkg, nil
}
