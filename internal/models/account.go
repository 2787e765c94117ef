package models

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bankledger/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AccountKindSavings    = "savings"
	AccountKindCurrent    = "current"
	AccountKindSalary     = "salary"
	AccountKindCreditCard = "credit_card"
	AccountKindFDFunding  = "fd_funding"

	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusClosed   = "closed"

	// Account number prefixes by kind
	CurrentPrefix    = "10"
	SavingsPrefix    = "20"
	SalaryPrefix     = "30"
	CreditCardPrefix = "40"
	FDFundingPrefix  = "50"
)

var (
	ErrInvalidAccountKind   = errors.New("invalid account kind")
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrNegativeBalance      = errors.New("balance cannot be negative for non-overdraft account")
	ErrMissingCreditLimit   = errors.New("credit card account requires a credit limit")
)

// Account is a ledger account. Balance is held in minor units and, by the
// reconciliation invariant, always equals the signed sum of the account's
// ledger entries. For credit_card accounts the balance is the amount drawn
// against the credit limit rather than available funds.
type Account struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Number           string       `gorm:"type:varchar(10);uniqueIndex;not null" json:"number"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind             string       `gorm:"type:varchar(20);not null" json:"kind"`
	Balance          money.Money  `gorm:"type:bigint;not null;default:0" json:"balance"`
	CreditLimit      *money.Money `gorm:"type:bigint" json:"credit_limit,omitempty"`
	OverdraftAllowed bool         `gorm:"not null;default:false" json:"overdraft_allowed"`
	Status           string       `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Currency         string       `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
	ClosedAt         *time.Time   `gorm:"index" json:"closed_at,omitempty"`

	// Associations
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"-"`
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.Status == "" {
		a.Status = AccountStatusActive
	}

	if a.Currency == "" {
		a.Currency = "INR"
	}

	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

// Validate validates the account fields
func (a *Account) Validate() error {
	if a.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if a.Number == "" {
		return errors.New("account number is required")
	}

	if len(a.Number) != 10 {
		return errors.New("account number must be 10 digits")
	}

	if !IsValidAccountKind(a.Kind) {
		return ErrInvalidAccountKind
	}

	if !IsValidAccountStatus(a.Status) {
		return ErrInvalidAccountStatus
	}

	if a.Kind == AccountKindCreditCard && a.CreditLimit == nil {
		return ErrMissingCreditLimit
	}

	if a.Balance.IsNegative() && !a.OverdraftAllowed && a.Kind != AccountKindCreditCard {
		return ErrNegativeBalance
	}

	// Business rule: account number prefix must match the account kind
	if a.Number[:2] != AccountPrefix(a.Kind) {
		return fmt.Errorf("account number prefix does not match account kind")
	}

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsCreditCard returns true for credit card companion accounts
func (a *Account) IsCreditCard() bool {
	return a.Kind == AccountKindCreditCard
}

// Close closes the account. The balance must be settled first so the
// transaction log and the terminal balance agree forever after.
func (a *Account) Close() error {
	if a.Status == AccountStatusClosed {
		return errors.New("account is already closed")
	}

	if !a.Balance.IsZero() {
		return errors.New("account balance must be zero to close")
	}

	a.Status = AccountStatusClosed
	now := time.Now()
	a.ClosedAt = &now
	return nil
}

// Deactivate deactivates the account
func (a *Account) Deactivate() error {
	if a.Status == AccountStatusClosed {
		return errors.New("cannot deactivate a closed account")
	}

	a.Status = AccountStatusInactive
	return nil
}

// Activate activates the account
func (a *Account) Activate() error {
	if a.Status == AccountStatusClosed {
		return errors.New("cannot activate a closed account")
	}

	a.Status = AccountStatusActive
	return nil
}

// AvailableToDebit returns the headroom a debit may consume: remaining
// credit for card accounts, the full balance for non-overdraft accounts.
// Overdraft-permitting accounts report no ceiling and return false.
func (a *Account) AvailableToDebit() (money.Money, bool) {
	if a.IsCreditCard() {
		remaining, err := a.CreditLimit.Sub(a.Balance)
		if err != nil {
			return money.Zero, true
		}
		return remaining, true
	}
	if a.OverdraftAllowed {
		return money.Zero, false
	}
	return a.Balance, true
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// Helper functions

// IsValidAccountKind checks if the account kind is valid
func IsValidAccountKind(kind string) bool {
	switch kind {
	case AccountKindSavings, AccountKindCurrent, AccountKindSalary,
		AccountKindCreditCard, AccountKindFDFunding:
		return true
	default:
		return false
	}
}

// IsValidAccountStatus checks if the account status is valid
func IsValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed:
		return true
	default:
		return false
	}
}

// AccountPrefix returns the number prefix for an account kind
func AccountPrefix(kind string) string {
	switch kind {
	case AccountKindCurrent:
		return CurrentPrefix
	case AccountKindSavings:
		return SavingsPrefix
	case AccountKindSalary:
		return SalaryPrefix
	case AccountKindCreditCard:
		return CreditCardPrefix
	case AccountKindFDFunding:
		return FDFundingPrefix
	default:
		return ""
	}
}

// GenerateAccountNumber generates a 10-digit account number for a kind
func GenerateAccountNumber(kind string) string {
	prefix := AccountPrefix(kind)
	if prefix == "" {
		return ""
	}

	middle := fmt.Sprintf("%02d", rand.Intn(100))
	suffix := fmt.Sprintf("%06d", rand.Intn(1000000))

	return prefix + middle + suffix
}

// ValidateAccountNumber validates an account number format
func ValidateAccountNumber(number string) bool {
	if len(number) != 10 {
		return false
	}

	for _, char := range number {
		if char < '0' || char > '9' {
			return false
		}
	}

	switch number[:2] {
	case CurrentPrefix, SavingsPrefix, SalaryPrefix, CreditCardPrefix, FDFundingPrefix:
		return true
	default:
		return false
	}
}
