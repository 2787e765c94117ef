package repositories

import (
	"errors"
	"fmt"

	"bankledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCreditCardNotFound = errors.New("credit card not found")

// creditCardRepository implements CreditCardRepositoryInterface
type creditCardRepository struct {
	db *gorm.DB
}

// NewCreditCardRepository creates a new credit card repository
func NewCreditCardRepository(db *gorm.DB) CreditCardRepositoryInterface {
	return &creditCardRepository{
		db: db,
	}
}

// Create creates a new credit card
func (r *creditCardRepository) Create(card *models.CreditCard) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create credit card: %w", err)
	}
	return nil
}

// GetByID retrieves a credit card by ID
func (r *creditCardRepository) GetByID(id uuid.UUID) (*models.CreditCard, error) {
	card := &models.CreditCard{ID: id}
	if err := r.db.First(card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditCardNotFound
		}
		return nil, fmt.Errorf("failed to get credit card: %w", err)
	}
	return card, nil
}

// GetByUserID retrieves all credit cards for a user
func (r *creditCardRepository) GetByUserID(userID uuid.UUID) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get credit cards for user: %w", err)
	}
	return cards, nil
}
