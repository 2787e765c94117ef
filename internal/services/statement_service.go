package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"
)

type statementService struct {
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	transferRepo    repositories.TransferRepositoryInterface
}

// NewStatementService creates a statement service
func NewStatementService(
	accountRepo repositories.AccountRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	transferRepo repositories.TransferRepositoryInterface,
) StatementServiceInterface {
	return &statementService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		transferRepo:    transferRepo,
	}
}

// History retrieves filtered transaction history, newest first
func (s *statementService) History(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if _, err := s.accountRepo.GetByID(filters.AccountID); err != nil {
		return nil, 0, err
	}
	return s.transactionRepo.ListByAccount(filters)
}

// Statement builds an account statement for a period with running totals
func (s *statementService) Statement(accountNumber string, start, end *time.Time) (*dto.StatementResponse, error) {
	account, err := s.accountRepo.GetByNumber(accountNumber)
	if err != nil {
		return nil, err
	}

	entries, _, err := s.transactionRepo.ListByAccount(models.TransactionFilters{
		AccountID: account.ID,
		StartDate: start,
		EndDate:   end,
		Limit:     0, // full period
	})
	if err != nil {
		return nil, err
	}

	var credits, debits money.Money
	for _, entry := range entries {
		if entry.Status != models.TransactionStatusCompleted {
			continue
		}
		switch entry.Direction {
		case models.DirectionCredit:
			credits, err = credits.Add(entry.Amount)
		case models.DirectionDebit:
			debits, err = debits.Add(entry.Amount)
		}
		if err != nil {
			return nil, err
		}
	}

	net, err := credits.Sub(debits)
	if err != nil {
		return nil, err
	}

	return &dto.StatementResponse{
		AccountNumber: account.Number,
		Transactions:  entries,
		Totals: dto.StatementTotals{
			Credits: credits.String(),
			Debits:  debits.String(),
			Net:     net.String(),
		},
	}, nil
}

// StatementCSV renders a statement as CSV for download
func (s *statementService) StatementCSV(accountNumber string, start, end *time.Time) ([]byte, error) {
	statement, err := s.Statement(accountNumber, start, end)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Sequence", "Direction", "Category",
		"Description", "Reference", "Amount", "Balance After"}); err != nil {
		return nil, err
	}

	for _, entry := range statement.Transactions {
		record := []string{
			entry.CreatedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", entry.Sequence),
			entry.Direction,
			entry.Category,
			entry.Description,
			entry.Reference,
			entry.Amount.String(),
			entry.BalanceAfter.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Transfers retrieves paginated transfer history for an account
func (s *statementService) Transfers(accountNumber string, offset, limit int) ([]models.Transfer, int64, error) {
	account, err := s.accountRepo.GetByNumber(accountNumber)
	if err != nil {
		return nil, 0, err
	}
	return s.transferRepo.ListByAccount(account.ID, offset, limit)
}
