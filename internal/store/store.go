package store

import (
	"context"
	"errors"
	"time"

	"mutual-aid-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateActivity      = errors.New("user already has an active activity for this role")
	ErrDuplicateUser          = errors.New("username or email already registered")
	ErrInvalidTransition      = errors.New("invalid status transition")
)

// CreateUserParams contains the parameters for creating a user.
type CreateUserParams struct {
	Id           string
	FullName     string
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// CreateActivityParams contains the parameters for creating a help activity.
// Role decides which of giver_id/receiver_id the user lands in.
type CreateActivityParams struct {
	UserId       string
	Role         string
	PackageId    string
	Amount       decimal.Decimal
	MaturityDate time.Time
}

// CreateMatchParams contains the parameters for atomically pairing a giver
// activity with a receiver activity.
type CreateMatchParams struct {
	GiverActivityId    string
	ReceiverActivityId string
	PackageId          string
	Amount             decimal.Decimal
}

// CompleteCycleResult reports the outcome of closing a confirmed match: the
// completed match and the giver activity the former receiver continues the
// cycle with. That activity is freshly created, unless the receiver still
// holds an active giver row (which happens on the normal path, since receiving
// is unlocked by a mature active giver activity) — then the existing row is
// kept and returned instead.
type CompleteCycleResult struct {
	Match             *models.PaymentMatch
	NextGiverActivity *models.HelpActivity
}

// UpsertPaymentAccountParams contains a user's receiving details.
type UpsertPaymentAccountParams struct {
	UserId        string
	AccountName   string
	AccountNumber string
	Provider      string
}

// AidStore defines the contract that every backend must satisfy. All status
// transitions are atomic: a failed operation leaves no partial mutation.
type AidStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	SetUserVerified(ctx context.Context, userId string, verified bool) error

	// --- Packages ---
	UpsertPackage(ctx context.Context, pkg models.Package) error
	GetPackages(ctx context.Context) ([]models.Package, error)
	GetPackageById(ctx context.Context, packageId string) (*models.Package, error)

	// --- Help activities ---
	CreateActivity(ctx context.Context, params CreateActivityParams) (*models.HelpActivity, error)
	GetActivityById(ctx context.Context, activityId string) (*models.HelpActivity, error)
	GetUserActivities(ctx context.Context, userId string) ([]models.HelpActivity, error)
	GetAllActivities(ctx context.Context) ([]models.HelpActivity, error)

	// --- Payment matches ---
	CreateMatch(ctx context.Context, params CreateMatchParams) (*models.PaymentMatch, error)
	ConfirmMatch(ctx context.Context, matchId string) (*models.PaymentMatch, error)
	CompleteCycle(ctx context.Context, matchId string, now time.Time) (*CompleteCycleResult, error)
	GetMatchById(ctx context.Context, matchId string) (*models.PaymentMatch, error)
	GetCurrentMatchForUser(ctx context.Context, userId string) (*models.PaymentMatch, string, error)
	GetOpenMatchForActivity(ctx context.Context, activityId string) (*models.PaymentMatch, error)

	// --- Payment accounts ---
	UpsertPaymentAccount(ctx context.Context, params UpsertPaymentAccountParams) (*models.PaymentAccount, error)
	GetPaymentAccount(ctx context.Context, userId string) (*models.PaymentAccount, error)

	// --- Lifecycle ---
	Close()
}
