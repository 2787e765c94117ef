package services

import (
	"context"
	"fmt"
	"log/slog"

	"bankledger/internal/dto"
	"bankledger/internal/ledger"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixedDepositService struct {
	fdRepo      repositories.FixedDepositRepositoryInterface
	accountRepo repositories.AccountRepositoryInterface
	engine      *ledger.Engine
	logger      *slog.Logger
}

// NewFixedDepositService creates a fixed deposit service
func NewFixedDepositService(
	fdRepo repositories.FixedDepositRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	engine *ledger.Engine,
	logger *slog.Logger,
) FixedDepositServiceInterface {
	return &fixedDepositService{
		fdRepo:      fdRepo,
		accountRepo: accountRepo,
		engine:      engine,
		logger:      logger,
	}
}

// Open creates a fixed deposit by debiting the principal from the funding
// account through the ledger. The FD is only recorded once the debit has
// been applied; a failed record is compensated with a re-credit.
func (s *fixedDepositService) Open(ctx context.Context, req dto.OpenFixedDepositRequest) (*models.FixedDeposit, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidRequest, "invalid user ID", err)
	}

	principal, err := money.Parse(req.Principal)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidAmount, "invalid principal", err)
	}

	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil || rate.IsNegative() {
		return nil, ledger.NewError(ledger.KindInvalidRequest, "invalid interest rate")
	}

	account, err := s.accountRepo.GetByNumber(req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ledger.NewError(ledger.KindInvalidRequest, "funding account belongs to another user")
	}

	fdNumber := models.GenerateFDNumber()

	if _, err := s.engine.FundFixedDeposit(ctx, ledger.FundFixedDepositRequest{
		FromAccountNumber:  account.Number,
		Amount:             principal,
		FixedDepositNumber: fdNumber,
		Description:        fmt.Sprintf("Fixed deposit %s opened", fdNumber),
		IdempotencyKey:     "fd-open-" + fdNumber,
	}); err != nil {
		return nil, err
	}

	fd := &models.FixedDeposit{
		FDNumber:       fdNumber,
		UserID:         userID,
		AccountNumber:  account.Number,
		Principal:      principal,
		InterestRate:   rate,
		TenureMonths:   req.TenureMonths,
		InterestPayout: req.InterestPayout,
		Nominee:        req.Nominee,
	}
	if err := s.fdRepo.Create(fd); err != nil {
		// Give the principal back; the FD was never recorded
		if _, depErr := s.engine.Deposit(ctx, ledger.DepositRequest{
			AccountNumber:  account.Number,
			Amount:         principal,
			Description:    fmt.Sprintf("Fixed deposit %s could not be recorded", fdNumber),
			Category:       models.CategoryReversal,
			IdempotencyKey: "fd-open-reversal-" + fdNumber,
		}); depErr != nil {
			s.logger.Error("unrecoverable: FD principal debited but deposit record failed",
				"fd_number", fdNumber,
				"account_number", account.Number,
				"principal", principal.String(),
				"create_error", err,
				"reversal_error", depErr)
		}
		return nil, err
	}

	s.logger.Info("fixed deposit opened",
		"fd_number", fd.FDNumber,
		"principal", principal.String(),
		"tenure_months", fd.TenureMonths)
	return fd, nil
}

// GetByNumber retrieves a fixed deposit by its FD number
func (s *fixedDepositService) GetByNumber(fdNumber string) (*models.FixedDeposit, error) {
	return s.fdRepo.GetByFDNumber(fdNumber)
}

// ListByUser retrieves all fixed deposits for a user
func (s *fixedDepositService) ListByUser(userID uuid.UUID) ([]models.FixedDeposit, error) {
	return s.fdRepo.GetByUserID(userID)
}

// PayOut matures a due fixed deposit and credits principal plus interest
// back to the funding account through the ledger.
func (s *fixedDepositService) PayOut(ctx context.Context, fdNumber string) (*models.FixedDeposit, error) {
	fd, err := s.fdRepo.GetByFDNumber(fdNumber)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	if err := fd.Mature(now); err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidRequest, "cannot mature fixed deposit", err)
	}

	payout, err := fd.MaturityAmount()
	if err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidAmount, "maturity amount out of range", err)
	}

	if _, err := s.engine.Deposit(ctx, ledger.DepositRequest{
		AccountNumber:  fd.AccountNumber,
		Amount:         payout,
		Description:    fmt.Sprintf("Fixed deposit %s matured", fd.FDNumber),
		Category:       models.CategoryFixedDeposit,
		IdempotencyKey: "fd-payout-" + fd.FDNumber,
	}); err != nil {
		return nil, err
	}

	if err := fd.CloseOut(now); err != nil {
		return nil, ledger.WrapError(ledger.KindUnexpected, "failed to close fixed deposit", err)
	}
	if err := s.fdRepo.Update(fd); err != nil {
		s.logger.Error("FD payout applied but status update failed",
			"fd_number", fd.FDNumber, "error", err)
		return nil, err
	}

	s.logger.Info("fixed deposit paid out",
		"fd_number", fd.FDNumber,
		"payout", payout.String())
	return fd, nil
}

// Renew rolls a due fixed deposit into a new one whose principal is the
// maturity amount of the old. No money touches the funding account.
func (s *fixedDepositService) Renew(ctx context.Context, fdNumber string, req dto.RenewFixedDepositRequest) (*models.FixedDeposit, error) {
	fd, err := s.fdRepo.GetByFDNumber(fdNumber)
	if err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil || rate.IsNegative() {
		return nil, ledger.NewError(ledger.KindInvalidRequest, "invalid interest rate")
	}

	now := timeNow()
	if err := fd.Mature(now); err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidRequest, "cannot renew fixed deposit", err)
	}

	principal, err := fd.MaturityAmount()
	if err != nil {
		return nil, ledger.WrapError(ledger.KindInvalidAmount, "maturity amount out of range", err)
	}

	if err := fd.CloseOut(now); err != nil {
		return nil, ledger.WrapError(ledger.KindUnexpected, "failed to close fixed deposit", err)
	}
	if err := s.fdRepo.Update(fd); err != nil {
		return nil, err
	}

	renewed := &models.FixedDeposit{
		UserID:         fd.UserID,
		AccountNumber:  fd.AccountNumber,
		Principal:      principal,
		InterestRate:   rate,
		TenureMonths:   req.TenureMonths,
		InterestPayout: fd.InterestPayout,
		Nominee:        fd.Nominee,
		StartDate:      now,
	}
	if err := s.fdRepo.Create(renewed); err != nil {
		return nil, err
	}

	s.logger.Info("fixed deposit renewed",
		"old_fd_number", fd.FDNumber,
		"new_fd_number", renewed.FDNumber,
		"principal", principal.String())
	return renewed, nil
}
