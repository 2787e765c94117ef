package repositories

import (
	"errors"
	"fmt"
	"strings"

	"bankledger/internal/models"

	"gorm.io/gorm"
)

var (
	ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")
	ErrIdempotencyKeyExists      = errors.New("idempotency key already recorded")
)

// idempotencyRepository implements IdempotencyRepositoryInterface
type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) IdempotencyRepositoryInterface {
	return &idempotencyRepository{
		db: db,
	}
}

// Find retrieves the stored receipt for an idempotency key
func (r *idempotencyRepository) Find(key string) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	if err := r.db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdempotencyRecordNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency record: %w", err)
	}
	return &record, nil
}

// Record stores the receipt for a newly applied operation. The unique index
// on the key turns a concurrent double-apply into a detectable duplicate.
func (r *idempotencyRepository) Record(record *models.IdempotencyRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrIdempotencyKeyExists
		}
		return fmt.Errorf("failed to record idempotency receipt: %w", err)
	}
	return nil
}

// isUniqueViolation catches unique constraint errors from drivers that do
// not translate them to gorm.ErrDuplicatedKey (sqlite in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
