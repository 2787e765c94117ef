package dto

import "bankledger/internal/models"

// OpenFixedDepositRequest represents the request payload for opening an FD.
// The principal is debited from the funding account through the ledger.
type OpenFixedDepositRequest struct {
	UserID         string `json:"user_id" validate:"required,uuid"`
	AccountNumber  string `json:"account_number" validate:"required,account_number"`
	Principal      string `json:"principal" validate:"required,money_amount"`
	InterestRate   string `json:"interest_rate" validate:"required"`
	TenureMonths   int    `json:"tenure_months" validate:"required,min=1,max=120"`
	InterestPayout string `json:"interest_payout,omitempty" validate:"omitempty,interest_payout"`
	Nominee        string `json:"nominee,omitempty" validate:"omitempty,max=100"`
}

// RenewFixedDepositRequest represents the request payload for renewing a
// matured FD into a new tenure
type RenewFixedDepositRequest struct {
	TenureMonths int    `json:"tenure_months" validate:"required,min=1,max=120"`
	InterestRate string `json:"interest_rate" validate:"required"`
}

// FixedDepositResponse represents a fixed deposit in API responses
type FixedDepositResponse struct {
	FixedDeposit   *models.FixedDeposit `json:"fixed_deposit"`
	MaturityAmount string               `json:"maturity_amount"`
	Message        string               `json:"message,omitempty"`
}

// FixedDepositListResponse represents a user's fixed deposits
type FixedDepositListResponse struct {
	FixedDeposits []models.FixedDeposit `json:"fixed_deposits"`
	Total         int                   `json:"total"`
}
