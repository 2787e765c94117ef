package models

import (
	"errors"
	"time"

	"bankledger/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"

	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"

	CategoryTransfer     = "Transfer"
	CategoryDeposit      = "Deposit"
	CategoryWithdrawal   = "Withdrawal"
	CategoryFixedDeposit = "Fixed Deposit"
	CategoryCardSpend    = "Card Spend"
	CategoryReversal     = "Reversal"
)

var (
	ErrInvalidDirection         = errors.New("invalid transaction direction")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrInvalidAmount            = errors.New("transaction amount must be positive")
)

// Transaction is a single ledger entry. Entries are append-only: once a
// completed entry exists it is never updated, and per-account ordering is
// fixed by the Sequence assigned at append time.
type Transaction struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	AccountID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_entries_account_seq,priority:1" json:"account_id"`
	Sequence      int64       `gorm:"not null;uniqueIndex:idx_entries_account_seq,priority:2" json:"sequence"`
	Direction     string      `gorm:"type:varchar(10);not null" json:"direction"`
	Amount        money.Money `gorm:"type:bigint;not null" json:"amount"`
	BalanceBefore money.Money `gorm:"type:bigint;not null" json:"balance_before"`
	BalanceAfter  money.Money `gorm:"type:bigint;not null" json:"balance_after"`
	Description   string      `gorm:"type:text" json:"description"`
	Category      string      `gorm:"type:varchar(50)" json:"category,omitempty"`
	Reference     string      `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	Metadata      JSONBMap    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt     time.Time   `gorm:"not null;index" json:"created_at"`

	// Associations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Status == "" {
		t.Status = TransactionStatusCompleted
	}

	if t.Reference == "" {
		t.Reference = GenerateReference()
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("account ID is required")
	}

	if !IsValidDirection(t.Direction) {
		return ErrInvalidDirection
	}

	if !IsValidTransactionStatus(t.Status) {
		return ErrInvalidTransactionStatus
	}

	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if t.Description == "" {
		return errors.New("transaction description is required")
	}

	return nil
}

// IsCompleted returns true if the transaction is completed
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// SignedAmount returns the entry amount with the sign convention used for
// reconciliation: credits count positive and debits negative. Card accounts
// invert this at summation time since their balance tracks the amount drawn.
func (t *Transaction) SignedAmount() (money.Money, error) {
	if t.Direction == DirectionCredit {
		return t.Amount, nil
	}
	return t.Amount.Neg()
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// Helper functions

// IsValidDirection checks if the transaction direction is valid
func IsValidDirection(direction string) bool {
	switch direction {
	case DirectionCredit, DirectionDebit:
		return true
	default:
		return false
	}
}

// IsValidTransactionStatus checks if the transaction status is valid
func IsValidTransactionStatus(status string) bool {
	switch status {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// IsValidCategory checks if the transaction category is valid
func IsValidCategory(category string) bool {
	switch category {
	case CategoryTransfer, CategoryDeposit, CategoryWithdrawal,
		CategoryFixedDeposit, CategoryCardSpend, CategoryReversal:
		return true
	default:
		return false
	}
}

// GenerateReference generates a unique transaction reference
func GenerateReference() string {
	return "TXN-" + uuid.New().String()[:8] + "-" + time.Now().Format("20060102150405")
}
