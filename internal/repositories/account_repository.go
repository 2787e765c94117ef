package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNumberExists = errors.New("account number already exists")
	ErrBalanceConflict     = errors.New("balance changed since read")
)

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
	mu sync.Mutex // For account number generation
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

// Create creates a new account
func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAccountNumberExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	account := &models.Account{ID: id}
	if err := r.db.First(account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByNumber retrieves an account by account number
func (r *accountRepository) GetByNumber(number string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("number = ?", number).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}
	return &account, nil
}

// GetByUserID retrieves all accounts for a user
func (r *accountRepository) GetByUserID(userID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts for user: %w", err)
	}
	return accounts, nil
}

// GetAll retrieves all accounts with pagination
func (r *accountRepository) GetAll(offset, limit int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	if err := r.db.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	if err := r.db.Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get accounts: %w", err)
	}

	return accounts, total, nil
}

// Update persists non-balance field changes (status, closure timestamps).
// Balance changes must go through CompareAndSetBalance.
func (r *accountRepository) Update(account *models.Account) error {
	if err := r.db.Model(&models.Account{ID: account.ID}).
		Select("status", "closed_at", "updated_at", "overdraft_allowed", "credit_limit").
		Updates(map[string]interface{}{
			"status":            account.Status,
			"closed_at":         account.ClosedAt,
			"updated_at":        time.Now(),
			"overdraft_allowed": account.OverdraftAllowed,
			"credit_limit":      account.CreditLimit,
		}).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// CompareAndSetBalance atomically replaces the balance only if it still
// equals the expected value. A guarded UPDATE means two racing writers can
// never both win: the loser sees zero rows affected and gets a conflict.
func (r *accountRepository) CompareAndSetBalance(accountID uuid.UUID, expected, newBalance money.Money) error {
	result := r.db.Model(&models.Account{}).
		Where("id = ? AND balance = ?", accountID, expected).
		Updates(map[string]interface{}{
			"balance":    newBalance,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Account{}).
			Where("id = ?", accountID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if count == 0 {
			return ErrAccountNotFound
		}
		return ErrBalanceConflict
	}

	return nil
}

// GenerateUniqueNumber generates a unique account number for a kind
func (r *accountRepository) GenerateUniqueNumber(kind string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		number := models.GenerateAccountNumber(kind)
		if number == "" {
			return "", fmt.Errorf("invalid account kind for number generation")
		}

		var count int64
		if err := r.db.Model(&models.Account{}).
			Where("number = ?", number).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check account number uniqueness: %w", err)
		}

		if count == 0 {
			return number, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique account number after %d attempts", maxAttempts)
}
