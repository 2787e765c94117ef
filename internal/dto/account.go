package dto

import (
	"bankledger/internal/models"
)

// Account Request DTOs

// OpenAccountRequest represents the request payload for opening a new account
type OpenAccountRequest struct {
	UserID         string `json:"user_id" validate:"required,uuid"`
	Kind           string `json:"kind" validate:"required,account_kind"`
	InitialDeposit string `json:"initial_deposit,omitempty" validate:"omitempty,money_amount"`
	OverdraftAllowed bool `json:"overdraft_allowed,omitempty"`
}

// Account Response DTOs

// OpenAccountResponse represents the response after opening an account
type OpenAccountResponse struct {
	Account *models.Account `json:"account"`
	Message string          `json:"message"`
}

// AccountListResponse represents a paginated list of accounts
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int64            `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
