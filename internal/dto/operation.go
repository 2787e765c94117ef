package dto

import "bankledger/internal/ledger"

// Ledger operation Request DTOs. Amounts travel as decimal strings and are
// converted to minor units at the handler boundary.

// DepositRequest represents the request payload for a deposit
type DepositRequest struct {
	AccountNumber string `json:"account_number" validate:"required,account_number"`
	Amount        string `json:"amount" validate:"required,money_amount"`
	Description   string `json:"description" validate:"required,min=1,max=255"`
	Category      string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// WithdrawRequest represents the request payload for a withdrawal
type WithdrawRequest struct {
	AccountNumber string `json:"account_number" validate:"required,account_number"`
	Amount        string `json:"amount" validate:"required,money_amount"`
	Description   string `json:"description" validate:"required,min=1,max=255"`
	Category      string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// TransferRequest represents the request payload for a transfer
type TransferRequest struct {
	FromAccountNumber string `json:"from_account_number" validate:"required,account_number"`
	ToAccountNumber   string `json:"to_account_number" validate:"required,account_number"`
	Amount            string `json:"amount" validate:"required,money_amount"`
	Description       string `json:"description" validate:"required,min=1,max=255"`
}

// Operation Response DTOs

// OperationResponse wraps the receipt of an applied operation
type OperationResponse struct {
	Message string          `json:"message"`
	Receipt *ledger.Receipt `json:"receipt"`
}

// ReconciliationResponse wraps a reconciliation report
type ReconciliationResponse struct {
	Report *ledger.ReconciliationReport `json:"report"`
}
