package repositories

import (
	"errors"
	"fmt"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Append writes a new ledger entry, assigning the next per-account sequence
// inside a transaction. The unique (account_id, sequence) index makes a
// duplicate assignment fail rather than silently reorder history.
func (r *transactionRepository) Append(entry *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ?", entry.AccountID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("failed to read max sequence: %w", err)
		}

		entry.Sequence = maxSeq + 1
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append transaction: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	entry := &models.Transaction{ID: id}
	if err := r.db.First(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return entry, nil
}

// GetByReference retrieves all entries sharing a reference. Both legs of a
// transfer share one reference.
func (r *transactionRepository) GetByReference(reference string) ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := r.db.Where("reference = ?", reference).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by reference: %w", err)
	}
	return entries, nil
}

// ListByAccount retrieves an account's entries newest-first with filters and
// pagination
func (r *transactionRepository) ListByAccount(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if err := filters.Validate(); err != nil {
		return nil, 0, err
	}

	query := r.db.Model(&models.Transaction{}).
		Where("account_id = ?", filters.AccountID)

	if filters.Direction != "" {
		query = query.Where("direction = ?", filters.Direction)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	// A non-positive limit means "the full result set"
	limit := filters.Limit
	if limit <= 0 {
		limit = -1
	}

	var entries []models.Transaction
	if err := query.Order("sequence DESC").
		Offset(filters.Offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return entries, total, nil
}

// SumByAccount sums the completed entries for an account, credits and debits
// separately. The caller applies the sign convention for the account kind.
func (r *transactionRepository) SumByAccount(accountID uuid.UUID) (credits, debits money.Money, err error) {
	type row struct {
		Direction string
		Total     int64
	}

	var rows []row
	if err := r.db.Model(&models.Transaction{}).
		Select("direction, COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ? AND status = ?", accountID, models.TransactionStatusCompleted).
		Group("direction").
		Scan(&rows).Error; err != nil {
		return money.Zero, money.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	for _, sum := range rows {
		switch sum.Direction {
		case models.DirectionCredit:
			credits = money.Money(sum.Total)
		case models.DirectionDebit:
			debits = money.Money(sum.Total)
		}
	}

	return credits, debits, nil
}

// CountByAccount counts all entries for an account
func (r *transactionRepository) CountByAccount(accountID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
