package repositories

import (
	"errors"
	"fmt"
	"time"

	"bankledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrFixedDepositNotFound = errors.New("fixed deposit not found")

// fixedDepositRepository implements FixedDepositRepositoryInterface
type fixedDepositRepository struct {
	db *gorm.DB
}

// NewFixedDepositRepository creates a new fixed deposit repository
func NewFixedDepositRepository(db *gorm.DB) FixedDepositRepositoryInterface {
	return &fixedDepositRepository{
		db: db,
	}
}

// Create creates a new fixed deposit
func (r *fixedDepositRepository) Create(fd *models.FixedDeposit) error {
	if err := r.db.Create(fd).Error; err != nil {
		return fmt.Errorf("failed to create fixed deposit: %w", err)
	}
	return nil
}

// GetByID retrieves a fixed deposit by ID
func (r *fixedDepositRepository) GetByID(id uuid.UUID) (*models.FixedDeposit, error) {
	fd := &models.FixedDeposit{ID: id}
	if err := r.db.First(fd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFixedDepositNotFound
		}
		return nil, fmt.Errorf("failed to get fixed deposit: %w", err)
	}
	return fd, nil
}

// GetByFDNumber retrieves a fixed deposit by FD number
func (r *fixedDepositRepository) GetByFDNumber(fdNumber string) (*models.FixedDeposit, error) {
	var fd models.FixedDeposit
	if err := r.db.Where("fd_number = ?", fdNumber).First(&fd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFixedDepositNotFound
		}
		return nil, fmt.Errorf("failed to get fixed deposit by number: %w", err)
	}
	return &fd, nil
}

// GetByUserID retrieves all fixed deposits for a user
func (r *fixedDepositRepository) GetByUserID(userID uuid.UUID) ([]models.FixedDeposit, error) {
	var fds []models.FixedDeposit
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&fds).Error; err != nil {
		return nil, fmt.Errorf("failed to get fixed deposits for user: %w", err)
	}
	return fds, nil
}

// Update updates a fixed deposit
func (r *fixedDepositRepository) Update(fd *models.FixedDeposit) error {
	if err := r.db.Save(fd).Error; err != nil {
		return fmt.Errorf("failed to update fixed deposit: %w", err)
	}
	return nil
}

// ListMaturedBefore retrieves active deposits whose maturity date has passed
func (r *fixedDepositRepository) ListMaturedBefore(cutoff time.Time) ([]models.FixedDeposit, error) {
	var fds []models.FixedDeposit
	if err := r.db.Where("status = ? AND maturity_date <= ?", models.FixedDepositStatusActive, cutoff).
		Order("maturity_date ASC").Find(&fds).Error; err != nil {
		return nil, fmt.Errorf("failed to list matured deposits: %w", err)
	}
	return fds, nil
}
