package errors

import "bankledger/internal/ledger"

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound      ErrorCode = "ACCOUNT_001"
	AccountClosed        ErrorCode = "ACCOUNT_002"
	AccountInvalidNumber ErrorCode = "ACCOUNT_003"
	AccountNotEmpty      ErrorCode = "ACCOUNT_004"
	AccountNumberTaken   ErrorCode = "ACCOUNT_005"
)

// Ledger operation error codes (LEDGER_*)
const (
	LedgerInvalidAmount     ErrorCode = "LEDGER_001"
	LedgerInvalidRequest    ErrorCode = "LEDGER_002"
	LedgerInsufficientFunds ErrorCode = "LEDGER_003"
	LedgerBusy              ErrorCode = "LEDGER_004"
	LedgerConflict          ErrorCode = "LEDGER_005"
	LedgerUnbalanced        ErrorCode = "LEDGER_006"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound ErrorCode = "TRANSACTION_001"
)

// Transfer error codes (TRANSFER_*)
const (
	TransferNotFound    ErrorCode = "TRANSFER_001"
	TransferSameAccount ErrorCode = "TRANSFER_002"
)

// Fixed deposit error codes (FD_*)
const (
	FixedDepositNotFound   ErrorCode = "FD_001"
	FixedDepositNotActive  ErrorCode = "FD_002"
	FixedDepositNotMatured ErrorCode = "FD_003"
	FixedDepositBadTenure  ErrorCode = "FD_004"
)

// Credit card error codes (CARD_*)
const (
	CardNotFound    ErrorCode = "CARD_001"
	CardInvalidTier ErrorCode = "CARD_002"
)

// User error codes (USER_*)
const (
	UserNotFound    ErrorCode = "USER_001"
	UserEmailExists ErrorCode = "USER_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format or range",

	// Account errors
	AccountNotFound:      "Account not found",
	AccountClosed:        "Account is closed or inactive",
	AccountInvalidNumber: "Invalid account number or kind",
	AccountNotEmpty:      "Account balance must be settled before closing",
	AccountNumberTaken:   "Account number is already in use",

	// Ledger operation errors
	LedgerInvalidAmount:     "Amount must be a positive whole number of minor units",
	LedgerInvalidRequest:    "Operation request is invalid",
	LedgerInsufficientFunds: "Insufficient funds for this operation",
	LedgerBusy:              "Account is busy, please retry",
	LedgerConflict:          "Operation conflicted with a concurrent change",
	LedgerUnbalanced:        "Account balance does not match its ledger entries",

	// Transaction errors
	TransactionNotFound: "Transaction not found",

	// Transfer errors
	TransferNotFound:    "Transfer not found",
	TransferSameAccount: "Cannot transfer to the same account",

	// Fixed deposit errors
	FixedDepositNotFound:   "Fixed deposit not found",
	FixedDepositNotActive:  "Fixed deposit is not active",
	FixedDepositNotMatured: "Fixed deposit has not matured yet",
	FixedDepositBadTenure:  "Fixed deposit tenure must be between 1 and 120 months",

	// Credit card errors
	CardNotFound:    "Credit card not found",
	CardInvalidTier: "Invalid credit card tier",

	// User errors
	UserNotFound:    "User not found",
	UserEmailExists: "An account with this email already exists",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}

// CodeForKind maps a ledger failure classification to its API error code
func CodeForKind(kind ledger.Kind) ErrorCode {
	switch kind {
	case ledger.KindInvalidAmount:
		return LedgerInvalidAmount
	case ledger.KindInvalidRequest:
		return LedgerInvalidRequest
	case ledger.KindAccountNotFound:
		return AccountNotFound
	case ledger.KindAccountClosed:
		return AccountClosed
	case ledger.KindInsufficientFunds:
		return LedgerInsufficientFunds
	case ledger.KindBusy:
		return LedgerBusy
	case ledger.KindConflict:
		return LedgerConflict
	default:
		return SystemInternalError
	}
}
