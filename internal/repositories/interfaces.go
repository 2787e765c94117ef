package repositories

import (
	"time"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/google/uuid"
)

// AccountRepositoryInterface defines the contract for account storage.
// CompareAndSetBalance is the only balance mutation path: it succeeds only
// when the stored balance still equals the expected value, which is what
// turns a lost-update race into a detectable conflict.
type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id uuid.UUID) (*models.Account, error)
	GetByNumber(number string) (*models.Account, error)
	GetByUserID(userID uuid.UUID) ([]models.Account, error)
	GetAll(offset, limit int) ([]models.Account, int64, error)
	Update(account *models.Account) error
	CompareAndSetBalance(accountID uuid.UUID, expected, newBalance money.Money) error
	GenerateUniqueNumber(kind string) (string, error)
}

// TransactionRepositoryInterface defines the contract for the append-only
// transaction log. Append assigns the next per-account sequence; completed
// entries are never updated afterwards.
type TransactionRepositoryInterface interface {
	Append(entry *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetByReference(reference string) ([]models.Transaction, error)
	ListByAccount(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	SumByAccount(accountID uuid.UUID) (credits, debits money.Money, err error)
	CountByAccount(accountID uuid.UUID) (int64, error)
}

// TransferRepositoryInterface defines the contract for transfer records
type TransferRepositoryInterface interface {
	Create(transfer *models.Transfer) error
	Update(transfer *models.Transfer) error
	FindByID(id uuid.UUID) (*models.Transfer, error)
	ListByAccount(accountID uuid.UUID, offset, limit int) ([]models.Transfer, int64, error)
}

// IdempotencyRepositoryInterface defines the contract for idempotency
// receipt storage
type IdempotencyRepositoryInterface interface {
	Find(key string) (*models.IdempotencyRecord, error)
	Record(record *models.IdempotencyRecord) error
}

// FixedDepositRepositoryInterface defines the contract for fixed deposit
// storage
type FixedDepositRepositoryInterface interface {
	Create(fd *models.FixedDeposit) error
	GetByID(id uuid.UUID) (*models.FixedDeposit, error)
	GetByFDNumber(fdNumber string) (*models.FixedDeposit, error)
	GetByUserID(userID uuid.UUID) ([]models.FixedDeposit, error)
	Update(fd *models.FixedDeposit) error
	ListMaturedBefore(cutoff time.Time) ([]models.FixedDeposit, error)
}

// CreditCardRepositoryInterface defines the contract for credit card storage
type CreditCardRepositoryInterface interface {
	Create(card *models.CreditCard) error
	GetByID(id uuid.UUID) (*models.CreditCard, error)
	GetByUserID(userID uuid.UUID) ([]models.CreditCard, error)
}

// UserRepositoryInterface defines the contract for user storage
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
