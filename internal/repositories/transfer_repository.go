package repositories

import (
	"errors"
	"fmt"

	"bankledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTransferNotFound = errors.New("transfer not found")

// transferRepository implements TransferRepositoryInterface
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *gorm.DB) TransferRepositoryInterface {
	return &transferRepository{
		db: db,
	}
}

// Create creates a new transfer record
func (r *transferRepository) Create(transfer *models.Transfer) error {
	if err := r.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// Update updates a transfer record
func (r *transferRepository) Update(transfer *models.Transfer) error {
	if err := r.db.Save(transfer).Error; err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	return nil
}

// FindByID retrieves a transfer by ID
func (r *transferRepository) FindByID(id uuid.UUID) (*models.Transfer, error) {
	transfer := &models.Transfer{ID: id}
	if err := r.db.First(transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return transfer, nil
}

// ListByAccount retrieves transfers involving an account, newest first
func (r *transferRepository) ListByAccount(accountID uuid.UUID, offset, limit int) ([]models.Transfer, int64, error) {
	query := r.db.Model(&models.Transfer{}).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []models.Transfer
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}

	return transfers, total, nil
}
