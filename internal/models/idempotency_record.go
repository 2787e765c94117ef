package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyRecord stores the receipt of an applied ledger operation keyed
// by the caller-supplied idempotency key. A replayed request returns the
// stored receipt instead of re-applying the operation.
type IdempotencyRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	Operation string    `gorm:"type:varchar(30);not null" json:"operation"`
	Receipt   []byte    `gorm:"type:text;not null" json:"receipt"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook for IdempotencyRecord
func (r *IdempotencyRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return r.Validate()
}

// Validate validates the idempotency record fields
func (r *IdempotencyRecord) Validate() error {
	if r.Key == "" {
		return errors.New("idempotency key is required")
	}
	if r.Operation == "" {
		return errors.New("operation is required")
	}
	if len(r.Receipt) == 0 {
		return errors.New("receipt payload is required")
	}
	return nil
}

// TableName returns the table name for IdempotencyRecord
func (r *IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
