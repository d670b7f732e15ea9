package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType classifies a balance-affecting event.
type LedgerEntryType string

const (
	EntryTypeDeposit  LedgerEntryType = "DEPOSIT"
	EntryTypeWithdraw LedgerEntryType = "WITHDRAW"
	EntryTypeDebit    LedgerEntryType = "DEBIT"
	EntryTypeCredit   LedgerEntryType = "CREDIT"
	EntryTypeFee      LedgerEntryType = "FEE"
	EntryTypeExchange LedgerEntryType = "EXCHANGE"
)

// LedgerEntry is one immutable line of the audit trail. Entries are only
// ever inserted, in the same transaction as the balance mutation they
// describe; nothing updates or deletes them.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	EntryType   LedgerEntryType `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	// ReferenceID links the entry to the Transfer, Swap, Withdrawal or
	// Deposit that produced it.
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
