package ledger

import (
	"bankledger/internal/models"
	"bankledger/internal/money"
)

// DepositRequest credits an account. For credit card accounts a deposit is a
// repayment that reduces the drawn amount.
type DepositRequest struct {
	AccountNumber  string
	Amount         money.Money
	Description    string
	Category       string
	IdempotencyKey string
}

// Validate checks the request before any account is touched
func (r DepositRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return NewError(KindInvalidAmount, "deposit amount must be positive")
	}
	if r.AccountNumber == "" {
		return NewError(KindInvalidRequest, "account number is required")
	}
	if r.Description == "" {
		return NewError(KindInvalidRequest, "description is required")
	}
	if r.Category != "" && !isValidCategory(r.Category) {
		return NewError(KindInvalidRequest, "unknown transaction category")
	}
	return nil
}

// WithdrawRequest debits an account. For credit card accounts a withdrawal
// is a spend that increases the drawn amount against the limit.
type WithdrawRequest struct {
	AccountNumber  string
	Amount         money.Money
	Description    string
	Category       string
	IdempotencyKey string
}

// Validate checks the request before any account is touched
func (r WithdrawRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return NewError(KindInvalidAmount, "withdrawal amount must be positive")
	}
	if r.AccountNumber == "" {
		return NewError(KindInvalidRequest, "account number is required")
	}
	if r.Description == "" {
		return NewError(KindInvalidRequest, "description is required")
	}
	if r.Category != "" && !isValidCategory(r.Category) {
		return NewError(KindInvalidRequest, "unknown transaction category")
	}
	return nil
}

// TransferRequest moves money between two accounts as a debit leg and a
// credit leg sharing one reference.
type TransferRequest struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            money.Money
	Description       string
	IdempotencyKey    string
}

// Validate checks the request before any account is touched
func (r TransferRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return NewError(KindInvalidAmount, "transfer amount must be positive")
	}
	if r.FromAccountNumber == "" || r.ToAccountNumber == "" {
		return NewError(KindInvalidRequest, "both account numbers are required")
	}
	if r.FromAccountNumber == r.ToAccountNumber {
		return NewError(KindInvalidRequest, "cannot transfer to the same account")
	}
	if r.Description == "" {
		return NewError(KindInvalidRequest, "description is required")
	}
	return nil
}

// FundFixedDepositRequest debits a funding account to open a fixed deposit.
// The deposit number becomes the entry reference so the principal can be
// traced back from the log.
type FundFixedDepositRequest struct {
	FromAccountNumber  string
	Amount             money.Money
	FixedDepositNumber string
	Description        string
	IdempotencyKey     string
}

// Validate checks the request before any account is touched
func (r FundFixedDepositRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return NewError(KindInvalidAmount, "principal must be positive")
	}
	if r.FromAccountNumber == "" {
		return NewError(KindInvalidRequest, "funding account number is required")
	}
	if r.FixedDepositNumber == "" {
		return NewError(KindInvalidRequest, "fixed deposit number is required")
	}
	if r.Description == "" {
		return NewError(KindInvalidRequest, "description is required")
	}
	return nil
}

func isValidCategory(category string) bool {
	return models.IsValidCategory(category)
}
