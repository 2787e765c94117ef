package handlers

import (
	"net/http"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/ledger"
	"bankledger/internal/money"

	"github.com/labstack/echo/v4"
)

// IdempotencyKeyHeader carries the caller's retry-safe operation key
const IdempotencyKeyHeader = "Idempotency-Key"

// OperationHandler handles balance-mutating HTTP requests. All mutations go
// through the ledger engine; nothing here touches balances directly.
type OperationHandler struct {
	engine *ledger.Engine
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(engine *ledger.Engine) *OperationHandler {
	return &OperationHandler{engine: engine}
}

// Deposit credits an account
func (h *OperationHandler) Deposit(c echo.Context) error {
	var req dto.DepositRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return SendError(c, errors.LedgerInvalidAmount)
	}

	receipt, err := h.engine.Deposit(c.Request().Context(), ledger.DepositRequest{
		AccountNumber:  req.AccountNumber,
		Amount:         amount,
		Description:    req.Description,
		Category:       req.Category,
		IdempotencyKey: c.Request().Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(operationStatus(receipt), dto.OperationResponse{
		Message: "Deposit applied",
		Receipt: receipt,
	})
}

// Withdraw debits an account
func (h *OperationHandler) Withdraw(c echo.Context) error {
	var req dto.WithdrawRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return SendError(c, errors.LedgerInvalidAmount)
	}

	receipt, err := h.engine.Withdraw(c.Request().Context(), ledger.WithdrawRequest{
		AccountNumber:  req.AccountNumber,
		Amount:         amount,
		Description:    req.Description,
		Category:       req.Category,
		IdempotencyKey: c.Request().Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(operationStatus(receipt), dto.OperationResponse{
		Message: "Withdrawal applied",
		Receipt: receipt,
	})
}

// Transfer moves funds between two accounts
func (h *OperationHandler) Transfer(c echo.Context) error {
	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.FromAccountNumber == req.ToAccountNumber {
		return SendError(c, errors.TransferSameAccount)
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return SendError(c, errors.LedgerInvalidAmount)
	}

	receipt, err := h.engine.Transfer(c.Request().Context(), ledger.TransferRequest{
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            amount,
		Description:       req.Description,
		IdempotencyKey:    c.Request().Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(operationStatus(receipt), dto.OperationResponse{
		Message: "Transfer applied",
		Receipt: receipt,
	})
}

// operationStatus distinguishes a fresh apply from an idempotent replay
func operationStatus(receipt *ledger.Receipt) int {
	if receipt.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}
