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
	CardTierStandard = "standard"
	CardTierGold     = "gold"
	CardTierPlatinum = "platinum"
)

var ErrInvalidCardTier = errors.New("invalid credit card tier")

// CreditCard is an issued card together with its companion ledger account.
// Spending is tracked as debits against the companion account, so the card's
// drawn amount obeys the same reconciliation invariant as any other account.
type CreditCard struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	HolderName   string      `gorm:"type:varchar(100);not null" json:"holder_name"`
	MaskedNumber string      `gorm:"type:varchar(20);not null" json:"masked_number"`
	Tier         string      `gorm:"type:varchar(20);not null" json:"tier"`
	CreditLimit  money.Money `gorm:"type:bigint;not null" json:"credit_limit"`
	AccountID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"account_id"`
	IssuedAt     time.Time   `gorm:"not null" json:"issued_at"`

	// Associations
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}

// BeforeCreate hook for CreditCard
func (cc *CreditCard) BeforeCreate(tx *gorm.DB) error {
	if cc.ID == uuid.Nil {
		cc.ID = uuid.New()
	}

	if cc.MaskedNumber == "" {
		cc.MaskedNumber = GenerateMaskedCardNumber()
	}

	if cc.IssuedAt.IsZero() {
		cc.IssuedAt = time.Now()
	}

	return cc.Validate()
}

// Validate validates the credit card fields
func (cc *CreditCard) Validate() error {
	if cc.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if cc.HolderName == "" {
		return errors.New("holder name is required")
	}

	if !IsValidCardTier(cc.Tier) {
		return ErrInvalidCardTier
	}

	if !cc.CreditLimit.IsPositive() {
		return errors.New("credit limit must be positive")
	}

	if cc.AccountID == uuid.Nil {
		return errors.New("companion account ID is required")
	}

	return nil
}

// TableName returns the table name for CreditCard
func (cc *CreditCard) TableName() string {
	return "credit_cards"
}

// IsValidCardTier checks if the card tier is valid
func IsValidCardTier(tier string) bool {
	switch tier {
	case CardTierStandard, CardTierGold, CardTierPlatinum:
		return true
	default:
		return false
	}
}

// GenerateMaskedCardNumber generates a masked display number for a new card
func GenerateMaskedCardNumber() string {
	return fmt.Sprintf("**** %04d", 1000+rand.Intn(9000))
}
