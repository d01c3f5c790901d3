package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"mutual-aid-go/internal/database"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupCoordinator(t *testing.T) (*Coordinator, *database.Service, func()) {
	t.Helper()

	service, err := database.NewService(context.Background(), models.DatabaseConfig{
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

	return NewCoordinator(service), service, cleanup
}

func seedCatalog(t *testing.T, s *database.Service) {
	t.Helper()

	packages := []models.Package{
		{Id: "pkg-1", Name: "Starter", Amount: decimal.NewFromInt(250),
			ReturnPercent: decimal.NewFromInt(50), DurationDays: 7, Active: true},
		{Id: "pkg-2", Name: "Growth", Amount: decimal.NewFromInt(500),
			ReturnPercent: decimal.NewFromInt(50), DurationDays: 14, Active: true},
		{Id: "pkg-retired", Name: "Retired", Amount: decimal.NewFromInt(100),
			ReturnPercent: decimal.NewFromInt(50), DurationDays: 7, Active: false},
	}
	for _, pkg := range packages {
		if err := s.UpsertPackage(context.Background(), pkg); err != nil {
			t.Fatalf("Failed to seed package %s: %v", pkg.Id, err)
		}
	}
}

func seedMember(t *testing.T, s *database.Service, username string) *models.User {
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

func TestRegisterOffer(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	user := seedMember(t, service, "alice")

	before := time.Now()
	activity, err := coordinator.RegisterOffer(ctx, user.Id, "pkg-1")
	if err != nil {
		t.Fatalf("RegisterOffer failed: %v", err)
	}

	if activity.Role() != models.RoleGiver {
		t.Errorf("Expected giver activity, got %s", activity.Role())
	}
	if !activity.Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected amount 250 from package, got %s", activity.Amount.String())
	}

	// maturity_date = now + 7 days per the Starter package
	expected := before.AddDate(0, 0, 7)
	if diff := activity.MaturityDate.Sub(expected); diff < -time.Minute || diff > time.Minute {
		t.Errorf("Expected maturity near %v, got %v", expected, activity.MaturityDate)
	}
}

func TestRegisterOffer_UnknownPackage(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()

	seedCatalog(t, service)
	user := seedMember(t, service, "alice")

	_, err := coordinator.RegisterOffer(context.Background(), user.Id, "pkg-missing")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for unknown package, got: %v", err)
	}

	_, err = coordinator.RegisterOffer(context.Background(), user.Id, "pkg-retired")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for retired package, got: %v", err)
	}
}

func TestRegisterReceive_GatedOnMaturity(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	user := seedMember(t, service, "alice")

	// No activities at all: receiving is blocked.
	_, err := coordinator.RegisterReceive(ctx, user.Id, "pkg-1")
	if !errors.Is(err, ErrCycleBlocked) {
		t.Errorf("Expected cycle blocked for fresh user, got: %v", err)
	}

	// An immature giver activity still blocks receiving.
	if _, err := coordinator.RegisterOffer(ctx, user.Id, "pkg-1"); err != nil {
		t.Fatalf("RegisterOffer failed: %v", err)
	}
	_, err = coordinator.RegisterReceive(ctx, user.Id, "pkg-1")
	if !errors.Is(err, ErrCycleBlocked) {
		t.Errorf("Expected cycle blocked for immature giver, got: %v", err)
	}
}

func TestRegisterReceive_AllowedOnceMature(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	user := seedMember(t, service, "alice")

	// Seed the giver activity directly with a past maturity date.
	if _, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId:       user.Id,
		Role:         models.RoleGiver,
		PackageId:    "pkg-1",
		Amount:       decimal.NewFromInt(250),
		MaturityDate: time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	activity, err := coordinator.RegisterReceive(ctx, user.Id, "pkg-1")
	if err != nil {
		t.Fatalf("RegisterReceive failed: %v", err)
	}
	if activity.Role() != models.RoleReceiver {
		t.Errorf("Expected receiver activity, got %s", activity.Role())
	}

	// Mid-cycle as receiver now: both actions blocked.
	actions, err := coordinator.UserActions(ctx, user.Id)
	if err != nil {
		t.Fatalf("UserActions failed: %v", err)
	}
	if actions.CanOfferHelp || actions.CanReceiveHelp {
		t.Errorf("Expected both actions blocked mid-cycle, got %+v", actions)
	}
}

func TestCreateMatch_PreconditionsAndMismatches(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	alice := seedMember(t, service, "alice")
	bob := seedMember(t, service, "bob")

	giver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: alice.Id, Role: models.RoleGiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	receiver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: bob.Id, Role: models.RoleReceiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	// Package mismatch rejected.
	_, err = coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(250), "pkg-2")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for package mismatch, got: %v", err)
	}

	// Amount mismatch rejected.
	_, err = coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(500), "pkg-1")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for amount mismatch, got: %v", err)
	}

	// Swapped roles rejected.
	_, err = coordinator.CreateMatch(ctx, receiver.Id, giver.Id, decimal.NewFromInt(250), "pkg-1")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for swapped roles, got: %v", err)
	}

	// The happy path still works after all the rejections: nothing mutated.
	match, err := coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(250), "pkg-1")
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	if match.Status != models.MatchPending {
		t.Errorf("Expected pending match, got %s", match.Status)
	}
}

func TestCreateMatch_ImmatureGiverRejected(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	alice := seedMember(t, service, "alice")
	bob := seedMember(t, service, "bob")

	giver, err := coordinator.RegisterOffer(ctx, alice.Id, "pkg-1")
	if err != nil {
		t.Fatalf("RegisterOffer failed: %v", err)
	}
	receiver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: bob.Id, Role: models.RoleReceiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	_, err = coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(250), "pkg-1")
	if !errors.Is(err, ErrNotMature) {
		t.Fatalf("Expected not mature error, got: %v", err)
	}

	// No rows mutated by the failed attempt.
	for _, id := range []string{giver.Id, receiver.Id} {
		activity, err := service.GetActivityById(ctx, id)
		if err != nil {
			t.Fatalf("GetActivityById failed: %v", err)
		}
		if activity.Status != models.ActivityActive {
			t.Errorf("Expected activity %s to stay active, got %s", id, activity.Status)
		}
	}
}

func TestCreateMatch_SelfMatchRejected(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	alice := seedMember(t, service, "alice")

	giver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: alice.Id, Role: models.RoleGiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	receiver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: alice.Id, Role: models.RoleReceiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	_, err = coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(250), "pkg-1")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for self match, got: %v", err)
	}
}

func TestAcknowledgeReceipt_FullCycle(t *testing.T) {
	coordinator, service, cleanup := setupCoordinator(t)
	defer cleanup()
	ctx := context.Background()

	seedCatalog(t, service)
	alice := seedMember(t, service, "alice")
	bob := seedMember(t, service, "bob")

	giver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: alice.Id, Role: models.RoleGiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	receiver, err := service.CreateActivity(ctx, store.CreateActivityParams{
		UserId: bob.Id, Role: models.RoleReceiver, PackageId: "pkg-1",
		Amount: decimal.NewFromInt(250), MaturityDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	match, err := coordinator.CreateMatch(ctx, giver.Id, receiver.Id, decimal.NewFromInt(250), "pkg-1")
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	if _, err := coordinator.ConfirmMatch(ctx, match.Id); err != nil {
		t.Fatalf("ConfirmMatch failed: %v", err)
	}

	// Only the receiver can acknowledge.
	_, err = coordinator.AcknowledgeReceipt(ctx, match.Id, alice.Id)
	if !errors.Is(err, ErrWrongReceiver) {
		t.Errorf("Expected wrong receiver error for the giver, got: %v", err)
	}

	result, err := coordinator.AcknowledgeReceipt(ctx, match.Id, bob.Id)
	if err != nil {
		t.Fatalf("AcknowledgeReceipt failed: %v", err)
	}
	if result.NextGiverActivity.GiverId != bob.Id {
		t.Errorf("Expected bob's next giver activity, got %s", result.NextGiverActivity.GiverId)
	}

	// Bob is now back at the giver stage: cannot offer again, cannot receive
	// until the new activity matures.
	actions, err := coordinator.UserActions(ctx, bob.Id)
	if err != nil {
		t.Fatalf("UserActions failed: %v", err)
	}
	if actions.CanOfferHelp {
		t.Errorf("Expected can_offer_help false with an auto-created giver activity")
	}
	if actions.CanReceiveHelp {
		t.Errorf("Expected can_receive_help false before the new activity matures")
	}
}
