package salary

import (
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxTotalAmount is the largest amount a NUMERIC(12,2) column holds.
var MaxTotalAmount = decimal.RequireFromString("9999999999.99")

// Calculate returns the amount owed for one day of work.
//
//	FIXED     -> unitPrice
//	HOURLY    -> unitPrice * duration (hours)
//	PIECEWORK -> unitPrice * count
func Calculate(payType base.PayType, unitPrice, duration decimal.Decimal, count int) (decimal.Decimal, error) {
	switch payType {
	case base.PayTypeFixed:
		return unitPrice, nil
	case base.PayTypeHourly:
		return unitPrice.Mul(duration), nil
	case base.PayTypePiecework:
		return unitPrice.Mul(decimal.NewFromInt(int64(count))), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownPayType, payType)
	}
}

// CheckTotal rejects amounts the ledger columns cannot store.
func CheckTotal(amount decimal.Decimal) error {
	if amount.Round(2).GreaterThan(MaxTotalAmount) {
		var errs validator.ValidationErrors
		errs.Add("total_amount", "total_amount must not exceed "+MaxTotalAmount.StringFixed(2))
		return errs.Err()
	}
	return nil
}
