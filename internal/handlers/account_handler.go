package handlers

import (
	stderrors "errors"
	"net/http"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/models"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// AccountHandler handles account lifecycle HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// OpenAccount creates a new account for a user
func (h *AccountHandler) OpenAccount(c echo.Context) error {
	var req dto.OpenAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountService.Open(c.Request().Context(), req)
	if err != nil {
		if stderrors.Is(err, services.ErrUnknownUser) {
			return SendError(c, errors.UserNotFound)
		}
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.OpenAccountResponse{
		Account: account,
		Message: "Account opened successfully",
	})
}

// GetAccount retrieves an account by its number
func (h *AccountHandler) GetAccount(c echo.Context) error {
	number := c.Param("number")
	if !models.ValidateAccountNumber(number) {
		return SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.accountService.GetByNumber(number)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// ListAccounts retrieves accounts with pagination
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	offset, limit := paginationParams(c, defaultPageLimit, maxPageLimit)

	accounts, total, err := h.accountService.List(offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	})
}

// ListUserAccounts retrieves all accounts belonging to a user
func (h *AccountHandler) ListUserAccounts(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("User ID must be a valid UUID"))
	}

	accounts, err := h.accountService.ListByUser(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    int64(len(accounts)),
		Limit:    len(accounts),
	})
}

// CloseAccount closes an account with a settled balance
func (h *AccountHandler) CloseAccount(c echo.Context) error {
	number := c.Param("number")
	if !models.ValidateAccountNumber(number) {
		return SendError(c, errors.AccountInvalidNumber)
	}

	err := h.accountService.Close(c.Request().Context(), number)
	if err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrAccountNotFound):
			return SendError(c, errors.AccountNotFound)
		case stderrors.Is(err, services.ErrAccountNotEmpty):
			return SendError(c, errors.AccountNotEmpty)
		default:
			return SendLedgerError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account closed successfully"})
}
