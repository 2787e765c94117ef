package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidDateRange = errors.New("end date cannot precede start date")

// TransactionFilters narrows a transaction history listing. Zero values
// mean "no filter".
type TransactionFilters struct {
	AccountID uuid.UUID
	Direction string
	Status    string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Offset    int
	Limit     int
}

// Validate checks filter enum values
func (f *TransactionFilters) Validate() error {
	if f.Direction != "" && !IsValidDirection(f.Direction) {
		return ErrInvalidDirection
	}
	if f.Status != "" && !IsValidTransactionStatus(f.Status) {
		return ErrInvalidTransactionStatus
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}
