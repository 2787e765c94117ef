package dto

import "bankledger/internal/models"

// IssueCardRequest represents the request payload for issuing a credit card.
// Issuing also opens the companion ledger account that tracks the drawn
// amount.
type IssueCardRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	HolderName  string `json:"holder_name" validate:"required,min=1,max=100"`
	Tier        string `json:"tier" validate:"required,card_tier"`
	CreditLimit string `json:"credit_limit" validate:"required,money_amount"`
}

// IssueCardResponse represents the response after issuing a card
type IssueCardResponse struct {
	Card    *models.CreditCard `json:"card"`
	Account *models.Account    `json:"account"`
	Message string             `json:"message"`
}

// CardListResponse represents a user's credit cards
type CardListResponse struct {
	Cards []models.CreditCard `json:"cards"`
	Total int                 `json:"total"`
}
