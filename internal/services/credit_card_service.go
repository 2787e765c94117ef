package services

import (
	"context"
	"log/slog"

	"bankledger/internal/dto"
	"bankledger/internal/ledger"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/google/uuid"
)

type creditCardService struct {
	cardRepo    repositories.CreditCardRepositoryInterface
	accountRepo repositories.AccountRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	logger      *slog.Logger
}

// NewCreditCardService creates a credit card service
func NewCreditCardService(
	cardRepo repositories.CreditCardRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *slog.Logger,
) CreditCardServiceInterface {
	return &creditCardService{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Issue creates a credit card together with its companion ledger account.
// Card spends and repayments then flow through the ledger engine against
// that account, so the drawn amount reconciles like any other balance.
func (s *creditCardService) Issue(ctx context.Context, req dto.IssueCardRequest) (*models.CreditCard, *models.Account, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, nil, ledger.WrapError(ledger.KindInvalidRequest, "invalid user ID", err)
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, nil, err
	}

	limit, err := money.Parse(req.CreditLimit)
	if err != nil {
		return nil, nil, ledger.WrapError(ledger.KindInvalidAmount, "invalid credit limit", err)
	}
	if !limit.IsPositive() {
		return nil, nil, ledger.NewError(ledger.KindInvalidAmount, "credit limit must be positive")
	}

	number, err := s.accountRepo.GenerateUniqueNumber(models.AccountKindCreditCard)
	if err != nil {
		return nil, nil, err
	}

	account := &models.Account{
		UserID:      userID,
		Number:      number,
		Kind:        models.AccountKindCreditCard,
		Balance:     money.Zero,
		CreditLimit: &limit,
		Status:      models.AccountStatusActive,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, nil, err
	}

	card := &models.CreditCard{
		UserID:      userID,
		HolderName:  req.HolderName,
		Tier:        req.Tier,
		CreditLimit: limit,
		AccountID:   account.ID,
	}
	if err := s.cardRepo.Create(card); err != nil {
		// Leave no orphan companion account behind
		if closeErr := account.Close(); closeErr == nil {
			if updErr := s.accountRepo.Update(account); updErr != nil {
				s.logger.Warn("failed to close orphan card account",
					"account_id", account.ID, "error", updErr)
			}
		}
		return nil, nil, err
	}

	s.logger.Info("credit card issued",
		"card_id", card.ID,
		"tier", card.Tier,
		"limit", limit.String(),
		"account_number", account.Number)
	return card, account, nil
}

// ListByUser retrieves all credit cards for a user
func (s *creditCardService) ListByUser(userID uuid.UUID) ([]models.CreditCard, error) {
	return s.cardRepo.GetByUserID(userID)
}
