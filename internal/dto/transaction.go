package dto

import "bankledger/internal/models"

// TransactionListResponse represents a paginated, filtered transaction
// history, newest first
type TransactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Offset       int                  `json:"offset"`
	Limit        int                  `json:"limit"`
}

// TransferHistoryResponse represents paginated transfer history
type TransferHistoryResponse struct {
	Transfers []models.Transfer `json:"transfers"`
	Total     int64             `json:"total"`
	Offset    int               `json:"offset"`
	Limit     int               `json:"limit"`
}

// StatementTotals aggregates the entries in a statement period
type StatementTotals struct {
	Credits string `json:"credits"`
	Debits  string `json:"debits"`
	Net     string `json:"net"`
}

// StatementResponse represents an account statement with period totals
type StatementResponse struct {
	AccountNumber string               `json:"account_number"`
	Transactions  []models.Transaction `json:"transactions"`
	Totals        StatementTotals      `json:"totals"`
}
