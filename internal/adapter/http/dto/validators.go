package dto

import (
	"regexp"

	"current-account-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Up to 13 integer digits and 6 fraction digits, matching NUMERIC(19,6).
var moneyRe = regexp.MustCompile(`^\d{1,13}(\.\d{1,6})?$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("txn_type", validateTxnType)
	}
}

// validateMoney accepts a plain positive decimal string.
func validateMoney(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !moneyRe.MatchString(raw) {
		return false
	}
	d, err := decimal.NewFromString(raw)
	return err == nil && d.IsPositive()
}

func validateTxnType(fl validator.FieldLevel) bool {
	return domain.TransactionType(fl.Field().String()).Valid()
}
