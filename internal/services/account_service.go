package services

import (
	"context"
	"errors"
	"log/slog"

	"bankledger/internal/dto"
	"bankledger/internal/ledger"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrAccountNotEmpty = errors.New("account balance must be zero to close")
	ErrUnknownUser     = errors.New("user does not exist")
)

type accountService struct {
	accountRepo repositories.AccountRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	engine      *ledger.Engine
	logger      *slog.Logger
}

// NewAccountService creates an account service
func NewAccountService(
	accountRepo repositories.AccountRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	engine *ledger.Engine,
	logger *slog.Logger,
) AccountServiceInterface {
	return &accountService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		engine:      engine,
		logger:      logger,
	}
}

// Open creates a new account and, when an initial deposit is given, credits
// it through the ledger so the opening balance has a matching log entry.
func (s *accountService) Open(ctx context.Context, req dto.OpenAccountRequest) (*models.Account, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidRequest, "invalid user ID", err)
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	var initialDeposit money.Money
	if req.InitialDeposit != "" {
		initialDeposit, err = money.Parse(req.InitialDeposit)
		if err != nil {
			return nil, ledger.WrapError(ledger.KindInvalidAmount, "invalid initial deposit", err)
		}
	}

	number, err := s.accountRepo.GenerateUniqueNumber(req.Kind)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:           userID,
		Number:           number,
		Kind:             req.Kind,
		Balance:          money.Zero,
		OverdraftAllowed: req.OverdraftAllowed,
		Status:           models.AccountStatusActive,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	s.logger.Info("account opened",
		"account_id", account.ID,
		"number", account.Number,
		"kind", account.Kind)

	if initialDeposit.IsPositive() {
		receipt, err := s.engine.Deposit(ctx, ledger.DepositRequest{
			AccountNumber: account.Number,
			Amount:        initialDeposit,
			Description:   "Opening deposit",
			Category:      models.CategoryDeposit,
		})
		if err != nil {
			return nil, err
		}
		account.Balance = receipt.BalanceAfter
	}

	return account, nil
}

// GetByNumber retrieves an account by its number
func (s *accountService) GetByNumber(number string) (*models.Account, error) {
	return s.accountRepo.GetByNumber(number)
}

// ListByUser retrieves all accounts belonging to a user
func (s *accountService) ListByUser(userID uuid.UUID) ([]models.Account, error) {
	return s.accountRepo.GetByUserID(userID)
}

// List retrieves accounts with pagination
func (s *accountService) List(offset, limit int) ([]models.Account, int64, error) {
	return s.accountRepo.GetAll(offset, limit)
}

// Close closes an account. The balance must already be zero so the terminal
// balance and the transaction log agree.
func (s *accountService) Close(ctx context.Context, number string) error {
	account, err := s.accountRepo.GetByNumber(number)
	if err != nil {
		return err
	}

	if !account.Balance.IsZero() {
		return ErrAccountNotEmpty
	}

	if err := account.Close(); err != nil {
		return ledger.WrapError(ledger.KindInvalidRequest, "cannot close account", err)
	}

	if err := s.accountRepo.Update(account); err != nil {
		return err
	}

	s.logger.Info("account closed", "account_id", account.ID, "number", account.Number)
	return nil
}
