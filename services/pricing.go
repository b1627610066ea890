package services

import "github.com/shopspring/decimal"

const (
	PlanFull = "full"
	PlanEMI3 = "emi_3"
	PlanEMI6 = "emi_6"
)

var planInstallments = map[string]int64{
	PlanFull: 1,
	PlanEMI3: 3,
	PlanEMI6: 6,
}

// PlanAmount is the amount charged now for plan on a center fee: the whole fee,
// or one installment rounded up to the paisa.
func PlanAmount(fee decimal.Decimal, plan string) (decimal.Decimal, error) {
	n, ok := planInstallments[plan]
	if !ok {
		return decimal.Zero, ErrInvalidPlan
	}
	return fee.Div(decimal.NewFromInt(n)).RoundCeil(2), nil
}

// ToPaise converts a rupee amount to the integer minor unit the gateway expects
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
