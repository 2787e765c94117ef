package models

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bankledger/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FixedDepositStatusActive  = "active"
	FixedDepositStatusMatured = "matured"
	FixedDepositStatusClosed  = "closed"

	InterestPayoutMonthly   = "monthly"
	InterestPayoutQuarterly = "quarterly"
	InterestPayoutMaturity  = "maturity"
)

var (
	ErrInvalidFDStatus  = errors.New("invalid fixed deposit status")
	ErrInvalidFDTenure  = errors.New("fixed deposit tenure must be between 1 and 120 months")
	ErrInvalidFDPayout  = errors.New("invalid interest payout schedule")
	ErrFDNotActive      = errors.New("fixed deposit is not active")
	ErrFDNotMatured     = errors.New("fixed deposit has not matured yet")
)

// FixedDeposit holds a principal drawn from a funding account through the
// ledger. Its money is never independent of the ledger: opening debits the
// funding account and payout credits it back.
type FixedDeposit struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	FDNumber       string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"fd_number"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountNumber  string          `gorm:"type:varchar(10);not null;index" json:"account_number"`
	Principal      money.Money     `gorm:"type:bigint;not null" json:"principal"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	TenureMonths   int             `gorm:"not null" json:"tenure_months"`
	InterestPayout string          `gorm:"type:varchar(20);not null;default:'maturity'" json:"interest_payout"`
	Nominee        string          `gorm:"type:varchar(100)" json:"nominee,omitempty"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	MaturityDate   time.Time       `gorm:"not null" json:"maturity_date"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook for FixedDeposit
func (fd *FixedDeposit) BeforeCreate(tx *gorm.DB) error {
	if fd.ID == uuid.Nil {
		fd.ID = uuid.New()
	}

	if fd.FDNumber == "" {
		fd.FDNumber = GenerateFDNumber()
	}

	if fd.Status == "" {
		fd.Status = FixedDepositStatusActive
	}

	if fd.InterestPayout == "" {
		fd.InterestPayout = InterestPayoutMaturity
	}

	now := time.Now()
	if fd.StartDate.IsZero() {
		fd.StartDate = now
	}
	if fd.MaturityDate.IsZero() {
		fd.MaturityDate = fd.StartDate.AddDate(0, fd.TenureMonths, 0)
	}
	if fd.CreatedAt.IsZero() {
		fd.CreatedAt = now
	}
	if fd.UpdatedAt.IsZero() {
		fd.UpdatedAt = now
	}

	return fd.Validate()
}

// BeforeUpdate hook for FixedDeposit
func (fd *FixedDeposit) BeforeUpdate(tx *gorm.DB) error {
	fd.UpdatedAt = time.Now()
	return fd.Validate()
}

// Validate validates the fixed deposit fields
func (fd *FixedDeposit) Validate() error {
	if fd.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if fd.AccountNumber == "" {
		return errors.New("funding account number is required")
	}

	if !fd.Principal.IsPositive() {
		return errors.New("principal must be positive")
	}

	if fd.TenureMonths < 1 || fd.TenureMonths > 120 {
		return ErrInvalidFDTenure
	}

	if fd.InterestRate.IsNegative() {
		return errors.New("interest rate cannot be negative")
	}

	if !IsValidInterestPayout(fd.InterestPayout) {
		return ErrInvalidFDPayout
	}

	if !IsValidFDStatus(fd.Status) {
		return ErrInvalidFDStatus
	}

	if fd.MaturityDate.Before(fd.StartDate) {
		return errors.New("maturity date cannot precede start date")
	}

	return nil
}

// IsActive returns true if the fixed deposit is active
func (fd *FixedDeposit) IsActive() bool {
	return fd.Status == FixedDepositStatusActive
}

// IsMatured reports whether the maturity date has passed at the given time
func (fd *FixedDeposit) IsMatured(now time.Time) bool {
	return !now.Before(fd.MaturityDate)
}

// MaturityAmount returns principal plus simple interest over the tenure,
// rounded down to whole minor units.
func (fd *FixedDeposit) MaturityAmount() (money.Money, error) {
	interest := fd.Principal.Decimal().
		Mul(fd.InterestRate).
		Mul(decimal.NewFromInt(int64(fd.TenureMonths))).
		Div(decimal.NewFromInt(1200)).
		RoundDown(2)

	earned, err := money.FromDecimal(interest)
	if err != nil {
		return money.Zero, err
	}
	return fd.Principal.Add(earned)
}

// Mature marks an active, due fixed deposit as matured
func (fd *FixedDeposit) Mature(now time.Time) error {
	if !fd.IsActive() {
		return ErrFDNotActive
	}
	if !fd.IsMatured(now) {
		return ErrFDNotMatured
	}
	fd.Status = FixedDepositStatusMatured
	return nil
}

// CloseOut marks a matured fixed deposit as closed after payout
func (fd *FixedDeposit) CloseOut(now time.Time) error {
	if fd.Status != FixedDepositStatusMatured {
		return ErrFDNotMatured
	}
	fd.Status = FixedDepositStatusClosed
	fd.ClosedAt = &now
	return nil
}

// TableName returns the table name for FixedDeposit
func (fd *FixedDeposit) TableName() string {
	return "fixed_deposits"
}

// IsValidFDStatus checks if the fixed deposit status is valid
func IsValidFDStatus(status string) bool {
	switch status {
	case FixedDepositStatusActive, FixedDepositStatusMatured, FixedDepositStatusClosed:
		return true
	default:
		return false
	}
}

// IsValidInterestPayout checks if the payout schedule is valid
func IsValidInterestPayout(payout string) bool {
	switch payout {
	case InterestPayoutMonthly, InterestPayoutQuarterly, InterestPayoutMaturity:
		return true
	default:
		return false
	}
}

// GenerateFDNumber generates a fixed deposit number
func GenerateFDNumber() string {
	return fmt.Sprintf("FD%06d", rand.Intn(1000000))
}
