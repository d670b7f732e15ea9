package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the compliance state of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusFrozen  AccountStatus = "FROZEN"
	AccountStatusPending AccountStatus = "PENDING"
)

// Account is the custodial ledger account of a single user. Accounts are
// never deleted, only anonymized by compliance tooling.
type Account struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"owner_id"`
	Email           string        `json:"email"`
	PrimaryCurrency string        `json:"primary_currency"`
	Status          AccountStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CanMoveFunds reports whether the account may initiate or receive
// balance-affecting operations.
func (a *Account) CanMoveFunds() bool {
	return a.Status == AccountStatusActive
}
