package affiliate

import "github.com/shopspring/decimal"

// Rate is the flat commission rate accrued to a referring affiliate on every
// line of an order placed with their referral code: 2% of the extended price.
var Rate = decimal.New(2, -2)

// Commission computes the accrual for one order line. The result is exact;
// rounding to two decimal places happens only when amounts are displayed.
func Commission(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(Rate)
}
