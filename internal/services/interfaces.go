package services

import (
	"context"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/models"

	"github.com/google/uuid"
)

// timeNow is swapped out in tests that need a fixed clock
var timeNow = time.Now

// AccountServiceInterface manages account lifecycle. Balance mutations are
// not part of this interface: they belong to the ledger engine.
type AccountServiceInterface interface {
	Open(ctx context.Context, req dto.OpenAccountRequest) (*models.Account, error)
	GetByNumber(number string) (*models.Account, error)
	ListByUser(userID uuid.UUID) ([]models.Account, error)
	List(offset, limit int) ([]models.Account, int64, error)
	Close(ctx context.Context, number string) error
}

// StatementServiceInterface serves transaction history, statements and
// transfer history
type StatementServiceInterface interface {
	History(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	Statement(accountNumber string, start, end *time.Time) (*dto.StatementResponse, error)
	StatementCSV(accountNumber string, start, end *time.Time) ([]byte, error)
	Transfers(accountNumber string, offset, limit int) ([]models.Transfer, int64, error)
}

// FixedDepositServiceInterface manages fixed deposits. Principal and payout
// move through the ledger engine against the funding account.
type FixedDepositServiceInterface interface {
	Open(ctx context.Context, req dto.OpenFixedDepositRequest) (*models.FixedDeposit, error)
	GetByNumber(fdNumber string) (*models.FixedDeposit, error)
	ListByUser(userID uuid.UUID) ([]models.FixedDeposit, error)
	PayOut(ctx context.Context, fdNumber string) (*models.FixedDeposit, error)
	Renew(ctx context.Context, fdNumber string, req dto.RenewFixedDepositRequest) (*models.FixedDeposit, error)
}

// CreditCardServiceInterface issues cards and their companion ledger
// accounts
type CreditCardServiceInterface interface {
	Issue(ctx context.Context, req dto.IssueCardRequest) (*models.CreditCard, *models.Account, error)
	ListByUser(userID uuid.UUID) ([]models.CreditCard, error)
}

// MetricsRecorderInterface records operation metrics. It satisfies the
// ledger engine's recorder contract.
type MetricsRecorderInterface interface {
	ObserveOperation(operation, outcome string, seconds float64)
	CountConflictRetry(operation string)
	CountReconciliation(balanced bool)
}
