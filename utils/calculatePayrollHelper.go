package utils

import "github.com/shopspring/decimal"

var (
	// statutory employer social fee rate (arbetsgivaravgifter)
	employerFeePercent = decimal.NewFromFloat(31.42)

	// annual statutory vacation entitlement in days
	vacationDaysPerYear = decimal.NewFromInt(25)
	monthsPerYear       = decimal.NewFromInt(12)
)

// CalculateEmployerFees returns the employer social fees on the given base
// (gross cash pay plus taxable benefits), rounded to whole öre.
func CalculateEmployerFees(base decimal.Decimal) decimal.Decimal {
	return base.Mul(employerFeePercent).DivRound(decimalOneHundred, 2)
}

// CalculateWithholdingTax returns preliminary tax withheld from gross pay
// using the employee's tax-table percentage, rounded to whole kronor the way
// the Skatteverket tables are published.
func CalculateWithholdingTax(gross decimal.Decimal, taxTablePercent decimal.Decimal) decimal.Decimal {
	if gross.IsNegative() {
		return decimal.Zero
	}
	return gross.Mul(taxTablePercent).DivRound(decimalOneHundred, 0)
}

// MonthlyVacationAccrual returns the vacation days earned for one full month
// of employment: 25/12 = 2.08 days, scaled by employment percentage.
func MonthlyVacationAccrual(employmentPercent decimal.Decimal) decimal.Decimal {
	monthly := vacationDaysPerYear.DivRound(monthsPerYear, 2)
	return monthly.Mul(employmentPercent).DivRound(decimalOneHundred, 2)
}
