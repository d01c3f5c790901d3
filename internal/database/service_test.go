package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	t.Helper()

	service, err := NewService(context.Background(), models.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		service.Close()
	}

	return service, cleanup
}

func seedUser(t *testing.T, s *Service, username string) *models.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), store.CreateUserParams{
		Id:           "user-" + username,
		FullName:     "Test " + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleMember,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func seedPackage(t *testing.T, s *Service) *models.Package {
	t.Helper()

	pkg := models.Package{
		Id:            "pkg-1",
		Name:          "Starter",
		Amount:        decimal.NewFromInt(250),
		ReturnPercent: decimal.NewFromInt(50),
		DurationDays:  7,
		Active:        true,
	}
	if err := s.UpsertPackage(context.Background(), pkg); err != nil {
		t.Fatalf("Failed to seed package: %v", err)
	}
	return &pkg
}

func TestCreateUser_AssignsSequentialDisplayNumbers(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	first := seedUser(t, service, "alice")
	second := seedUser(t, service, "bob")

	if first.DisplayNumber != 1 {
		t.Errorf("Expected display number 1, got %d", first.DisplayNumber)
	}
	if second.DisplayNumber != 2 {
		t.Errorf("Expected display number 2, got %d", second.DisplayNumber)
	}
	if !first.TotalEarnings.IsZero() {
		t.Errorf("Expected zero starting earnings, got %s", first.TotalEarnings.String())
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	seedUser(t, service, "alice")

	_, err := service.CreateUser(context.Background(), store.CreateUserParams{
		Id:           "user-other",
		FullName:     "Other Alice",
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
		Role:         models.RoleMember,
	})
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("Expected duplicate user error, got: %v", err)
	}
}

func TestSetUserVerified(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	user := seedUser(t, service, "alice")
	if err := service.SetUserVerified(ctx, user.Id, true); err != nil {
		t.Fatalf("SetUserVerified failed: %v", err)
	}

	reloaded, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !reloaded.Verified {
		t.Errorf("Expected user to be verified")
	}

	if err := service.SetUserVerified(ctx, "missing", true); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected not found for missing user, got: %v", err)
	}
}

func TestUpsertPackage_Validation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	err := service.UpsertPackage(ctx, models.Package{
		Id: "pkg-bad", Name: "Bad", Amount: decimal.Zero, DurationDays: 7, Active: true,
	})
	if err == nil {
		t.Errorf("Expected error for non-positive amount")
	}

	err = service.UpsertPackage(ctx, models.Package{
		Id: "pkg-bad", Name: "Bad", Amount: decimal.NewFromInt(100), DurationDays: 0, Active: true,
	})
	if err == nil {
		t.Errorf("Expected error for non-positive duration")
	}
}

func TestGetPackages_ReturnsActiveOnly(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	seedPackage(t, service)
	if err := service.UpsertPackage(ctx, models.Package{
		Id: "pkg-2", Name: "Retired", Amount: decimal.NewFromInt(500),
		ReturnPercent: decimal.NewFromInt(50), DurationDays: 14, Active: false,
	}); err != nil {
		t.Fatalf("UpsertPackage failed: %v", err)
	}

	packages, err := service.GetPackages(ctx)
	if err != nil {
		t.Fatalf("GetPackages failed: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("Expected 1 active package, got %d", len(packages))
	}
	if packages[0].Id != "pkg-1" {
		t.Errorf("Expected pkg-1, got %s", packages[0].Id)
	}
}
