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

// FixedDepositHandler handles fixed deposit HTTP requests
type FixedDepositHandler struct {
	fdService services.FixedDepositServiceInterface
}

// NewFixedDepositHandler creates a new fixed deposit handler
func NewFixedDepositHandler(fdService services.FixedDepositServiceInterface) *FixedDepositHandler {
	return &FixedDepositHandler{fdService: fdService}
}

// OpenFixedDeposit opens a fixed deposit funded from an account
func (h *FixedDepositHandler) OpenFixedDeposit(c echo.Context) error {
	var req dto.OpenFixedDepositRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fd, err := h.fdService.Open(c.Request().Context(), req)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, fdResponse(fd, "Fixed deposit opened successfully"))
}

// GetFixedDeposit retrieves a fixed deposit by its number
func (h *FixedDepositHandler) GetFixedDeposit(c echo.Context) error {
	fd, err := h.fdService.GetByNumber(c.Param("fdNumber"))
	if err != nil {
		if stderrors.Is(err, repositories.ErrFixedDepositNotFound) {
			return SendError(c, errors.FixedDepositNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, fdResponse(fd, ""))
}

// ListUserFixedDeposits retrieves all fixed deposits belonging to a user
func (h *FixedDepositHandler) ListUserFixedDeposits(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("User ID must be a valid UUID"))
	}

	deposits, err := h.fdService.ListByUser(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.FixedDepositListResponse{
		FixedDeposits: deposits,
		Total:         len(deposits),
	})
}

// PayOutFixedDeposit credits the maturity amount back to the funding account
func (h *FixedDepositHandler) PayOutFixedDeposit(c echo.Context) error {
	fd, err := h.fdService.PayOut(c.Request().Context(), c.Param("fdNumber"))
	if err != nil {
		if stderrors.Is(err, repositories.ErrFixedDepositNotFound) {
			return SendError(c, errors.FixedDepositNotFound)
		}
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, fdResponse(fd, "Fixed deposit paid out successfully"))
}

// RenewFixedDeposit rolls a matured deposit into a new tenure
func (h *FixedDepositHandler) RenewFixedDeposit(c echo.Context) error {
	var req dto.RenewFixedDepositRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fd, err := h.fdService.Renew(c.Request().Context(), c.Param("fdNumber"), req)
	if err != nil {
		if stderrors.Is(err, repositories.ErrFixedDepositNotFound) {
			return SendError(c, errors.FixedDepositNotFound)
		}
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, fdResponse(fd, "Fixed deposit renewed successfully"))
}

func fdResponse(fd *models.FixedDeposit, message string) dto.FixedDepositResponse {
	maturity := ""
	if amount, err := fd.MaturityAmount(); err == nil {
		maturity = amount.String()
	}
	return dto.FixedDepositResponse{
		FixedDeposit:   fd,
		MaturityAmount: maturity,
		Message:        message,
	}
}
