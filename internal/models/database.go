package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// HelpActivity statuses
const (
	ActivityActive    = "active"
	ActivityMatched   = "matched"
	ActivityCompleted = "completed"
)

// HelpActivity roles
const (
	RoleGiver    = "giver"
	RoleReceiver = "receiver"
)

// PaymentMatch statuses
const (
	MatchPending   = "pending"
	MatchConfirmed = "confirmed"
	MatchCompleted = "completed"
)

// User represents a registered member or administrator
type User struct {
	Id            string          `db:"id"`
	DisplayNumber int64           `db:"display_number"`
	FullName      string          `db:"full_name"`
	Username      string          `db:"username"`
	Email         string          `db:"email"`
	PasswordHash  string          `db:"password_hash"`
	Role          string          `db:"role"`
	Verified      bool            `db:"verified"`
	TotalEarnings decimal.Decimal `db:"total_earnings"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Package is an immutable catalog entry defining an aid amount and how long
// a giver activity takes to mature
type Package struct {
	Id            string          `db:"id"`
	Name          string          `db:"name"`
	Amount        decimal.Decimal `db:"amount"`
	ReturnPercent decimal.Decimal `db:"return_percent"`
	DurationDays  int             `db:"duration_days"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
}

// HelpActivity is a one-sided pledge (give or receive) tied to a package.
// Exactly one of GiverId/ReceiverId is set; it denotes the acting user's role.
type HelpActivity struct {
	Id            string          `db:"id"`
	GiverId       string          `db:"giver_id"`    // empty when ReceiverId is set
	ReceiverId    string          `db:"receiver_id"` // empty when GiverId is set
	PackageId     string          `db:"package_id"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	AdminApproved bool            `db:"admin_approved"`
	CreatedAt     time.Time       `db:"created_at"`
	MaturityDate  time.Time       `db:"maturity_date"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Role returns RoleGiver or RoleReceiver depending on which side owns the row.
func (a *HelpActivity) Role() string {
	if a.GiverId != "" {
		return RoleGiver
	}
	return RoleReceiver
}

// UserId returns the id of the user acting in this activity.
func (a *HelpActivity) UserId() string {
	if a.GiverId != "" {
		return a.GiverId
	}
	return a.ReceiverId
}

// PaymentMatch binds exactly one giver activity to one receiver activity
// for a single payment transfer
type PaymentMatch struct {
	Id                 string          `db:"id"`
	GiverActivityId    string          `db:"giver_activity_id"`
	ReceiverActivityId string          `db:"receiver_activity_id"`
	PackageId          string          `db:"package_id"`
	Amount             decimal.Decimal `db:"amount"`
	Status             string          `db:"status"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

// PaymentAccount holds a user's receiving details, read-only input to matching
type PaymentAccount struct {
	Id            string    `db:"id"`
	UserId        string    `db:"user_id"`
	AccountName   string    `db:"account_name"`
	AccountNumber string    `db:"account_number"`
	Provider      string    `db:"provider"`
	UpdatedAt     time.Time `db:"updated_at"`
}
