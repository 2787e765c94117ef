package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/ledger"
	"bankledger/internal/models"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
)

// TransactionHandler serves transaction history, statements and
// reconciliation for an account
type TransactionHandler struct {
	statementService services.StatementServiceInterface
	accountService   services.AccountServiceInterface
	engine           *ledger.Engine
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	statementService services.StatementServiceInterface,
	accountService services.AccountServiceInterface,
	engine *ledger.Engine,
) *TransactionHandler {
	return &TransactionHandler{
		statementService: statementService,
		accountService:   accountService,
		engine:           engine,
	}
}

// ListTransactions retrieves paginated, filtered transaction history for an
// account, newest first
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	account, err := h.lookupAccount(c)
	if err != nil {
		return err
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	filters.AccountID = account.ID

	transactions, total, err := h.statementService.History(filters)
	if err != nil {
		if stderrors.Is(err, models.ErrInvalidDateRange) {
			return SendError(c, errors.ValidationInvalidDate)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Offset:       filters.Offset,
		Limit:        filters.Limit,
	})
}

// GetStatement retrieves an account statement with period totals
func (h *TransactionHandler) GetStatement(c echo.Context) error {
	number := c.Param("number")
	start, end, err := statementPeriod(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	statement, err := h.statementService.Statement(number, start, end)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, statement)
}

// DownloadStatement streams an account statement as a CSV attachment
func (h *TransactionHandler) DownloadStatement(c echo.Context) error {
	number := c.Param("number")
	start, end, err := statementPeriod(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	data, err := h.statementService.StatementCSV(number, start, end)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=statement-%s.csv", number))
	return c.Blob(http.StatusOK, "text/csv", data)
}

// ListTransfers retrieves paginated transfer history for an account
func (h *TransactionHandler) ListTransfers(c echo.Context) error {
	number := c.Param("number")
	offset, limit := paginationParams(c, defaultPageLimit, maxPageLimit)

	transfers, total, err := h.statementService.Transfers(number, offset, limit)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransferHistoryResponse{
		Transfers: transfers,
		Total:     total,
		Offset:    offset,
		Limit:     limit,
	})
}

// Reconcile recomputes the balance from the transaction log and compares it
// to the stored balance
func (h *TransactionHandler) Reconcile(c echo.Context) error {
	number := c.Param("number")

	report, err := h.engine.Reconcile(c.Request().Context(), number)
	if err != nil {
		return SendLedgerError(c, err)
	}

	status := http.StatusOK
	if !report.Balanced {
		// A mismatch is an integrity fault, not a client error
		status = http.StatusInternalServerError
	}
	return c.JSON(status, dto.ReconciliationResponse{Report: report})
}

func (h *TransactionHandler) lookupAccount(c echo.Context) (*models.Account, error) {
	number := c.Param("number")
	if !models.ValidateAccountNumber(number) {
		return nil, SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.accountService.GetByNumber(number)
	if err != nil {
		if stderrors.Is(err, repositories.ErrAccountNotFound) {
			return nil, SendError(c, errors.AccountNotFound)
		}
		return nil, SendSystemError(c, err)
	}
	return account, nil
}

// parseTransactionFilters parses and validates transaction filter parameters
func parseTransactionFilters(c echo.Context) (models.TransactionFilters, error) {
	offset, limit := paginationParams(c, defaultPageLimit, maxPageLimit)
	filters := models.TransactionFilters{
		Offset: offset,
		Limit:  limit,
	}

	start, err := parseDateParam(c, "start_date", false)
	if err != nil {
		return filters, err
	}
	filters.StartDate = start

	end, err := parseDateParam(c, "end_date", true)
	if err != nil {
		return filters, err
	}
	filters.EndDate = end

	if direction := c.QueryParam("direction"); direction != "" {
		if !models.IsValidDirection(direction) {
			return filters, fmt.Errorf("invalid direction, must be 'credit' or 'debit'")
		}
		filters.Direction = direction
	}

	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidTransactionStatus(status) {
			return filters, fmt.Errorf("invalid status")
		}
		filters.Status = status
	}

	if category := c.QueryParam("category"); category != "" {
		if !models.IsValidCategory(category) {
			return filters, fmt.Errorf("invalid category")
		}
		filters.Category = category
	}

	return filters, nil
}

// statementPeriod parses the optional statement date range
func statementPeriod(c echo.Context) (start, end *time.Time, err error) {
	start, err = parseDateParam(c, "start_date", false)
	if err != nil {
		return nil, nil, err
	}

	end, err = parseDateParam(c, "end_date", true)
	if err != nil {
		return nil, nil, err
	}

	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("end_date cannot precede start_date")
	}
	return start, end, nil
}
