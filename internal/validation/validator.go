package validation

import (
	"reflect"
	"regexp"
	"strings"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("account_kind", validateAccountKind)
	_ = v.RegisterValidation("card_tier", validateCardTier)
	_ = v.RegisterValidation("interest_payout", validateInterestPayout)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateAccountNumber validates that an account number is 10 digits with a
// known kind prefix
func validateAccountNumber(fl validator.FieldLevel) bool {
	return models.ValidateAccountNumber(fl.Field().String())
}

// validateMoneyAmount validates that a string amount parses to a positive
// whole number of minor units
func validateMoneyAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	// Reject anything that is not a plain decimal number
	matched, _ := regexp.MatchString(`^\d+(\.\d+)?$`, raw)
	if !matched {
		return false
	}

	amount, err := money.Parse(raw)
	if err != nil {
		return false
	}
	return amount.IsPositive()
}

// validateAccountKind validates that the kind is one of the allowed kinds
func validateAccountKind(fl validator.FieldLevel) bool {
	return models.IsValidAccountKind(fl.Field().String())
}

// validateCardTier validates that the tier is one of the allowed tiers
func validateCardTier(fl validator.FieldLevel) bool {
	return models.IsValidCardTier(fl.Field().String())
}

// validateInterestPayout validates the fixed deposit payout schedule
func validateInterestPayout(fl validator.FieldLevel) bool {
	return models.IsValidInterestPayout(fl.Field().String())
}
