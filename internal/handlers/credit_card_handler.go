package handlers

import (
	stderrors "errors"
	"net/http"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreditCardHandler handles credit card HTTP requests
type CreditCardHandler struct {
	cardService services.CreditCardServiceInterface
}

// NewCreditCardHandler creates a new credit card handler
func NewCreditCardHandler(cardService services.CreditCardServiceInterface) *CreditCardHandler {
	return &CreditCardHandler{cardService: cardService}
}

// IssueCard issues a credit card and its companion account
func (h *CreditCardHandler) IssueCard(c echo.Context) error {
	var req dto.IssueCardRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	card, account, err := h.cardService.Issue(c.Request().Context(), req)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.UserNotFound)
		}
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.IssueCardResponse{
		Card:    card,
		Account: account,
		Message: "Credit card issued successfully",
	})
}

// ListUserCards retrieves all credit cards belonging to a user
func (h *CreditCardHandler) ListUserCards(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("User ID must be a valid UUID"))
	}

	cards, err := h.cardService.ListByUser(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CardListResponse{
		Cards: cards,
		Total: len(cards),
	})
}
