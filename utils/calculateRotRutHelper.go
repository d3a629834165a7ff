package utils

import "github.com/shopspring/decimal"

var (
	decimalOneHundred = decimal.NewFromInt(100)

	// rotDeductionPercent is the nominal ROT rate shown on the invoice.
	rotDeductionPercent = decimal.NewFromInt(30)
	rutDeductionPercent = decimal.NewFromInt(50)

	// claimSplitPercent: the receivable split between customer and Skatteverket,
	// and the HUS-file claimed amount, use 50% for BOTH ROT and RUT.
	claimSplitPercent = decimal.NewFromInt(50)
)

// NominalDeductionPercent returns the advertised deduction rate for the scheme:
// 30 for ROT, 50 for RUT.
func NominalDeductionPercent(isRot bool) decimal.Decimal {
	if isRot {
		return rotDeductionPercent
	}
	return rutDeductionPercent
}

// CalculateRotRutDeduction computes the deduction shown on the invoice from the
// labor cost including VAT, using the scheme's nominal rate.
func CalculateRotRutDeduction(laborCostInclVat decimal.Decimal, isRot bool) decimal.Decimal {
	return laborCostInclVat.Mul(NominalDeductionPercent(isRot)).DivRound(decimalOneHundred, 2)
}

// CalculateClaimAmount computes begärt belopp for the HUS file and the
// Skatteverket share of the receivable. Always 50% of the labor cost including
// VAT, for ROT as well as RUT.
func CalculateClaimAmount(laborCostInclVat decimal.Decimal) decimal.Decimal {
	return laborCostInclVat.Mul(claimSplitPercent).DivRound(decimalOneHundred, 2)
}

// ApportionInvoiceTotal splits the invoice total into the customer-payable and
// Skatteverket-payable shares given the claim amount. The customer pays the
// remainder.
func ApportionInvoiceTotal(total decimal.Decimal, claimAmount decimal.Decimal) (customerShare decimal.Decimal, agencyShare decimal.Decimal) {
	agencyShare = claimAmount
	if agencyShare.GreaterThan(total) {
		agencyShare = total
	}
	customerShare = total.Sub(agencyShare)
	return customerShare, agencyShare
}
