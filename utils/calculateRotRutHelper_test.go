package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateRotRutDeduction(t *testing.T) {
	cases := []struct {
		labor    string
		isRot    bool
		expected string
	}{
		{"10000", false, "5000"},
		{"10000", true, "3000"},
		{"12500", false, "6250"},
		{"12500", true, "3750"},
		{"999.99", false, "500"},
		{"0", true, "0"},
	}
	for _, tc := range cases {
		labor := decimal.RequireFromString(tc.labor)
		got := CalculateRotRutDeduction(labor, tc.isRot)
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("CalculateRotRutDeduction(%s, rot=%v) expected %s, got %s", tc.labor, tc.isRot, tc.expected, got)
		}
	}
}

// Claimed amount stays at 50% for ROT too, even though the displayed ROT
// deduction is 30%.
func TestCalculateClaimAmount_SameForRotAndRut(t *testing.T) {
	labor := decimal.RequireFromString("12500")
	got := CalculateClaimAmount(labor)
	if !got.Equal(decimal.RequireFromString("6250")) {
		t.Fatalf("CalculateClaimAmount(12500) expected 6250, got %s", got)
	}
}

func TestApportionInvoiceTotal(t *testing.T) {
	cases := []struct {
		total            string
		claim            string
		expectedCustomer string
		expectedAgency   string
	}{
		{"12500", "6250", "6250", "6250"},
		{"20000", "6250", "13750", "6250"},
		// claim can never exceed the invoice total
		{"5000", "6250", "0", "5000"},
	}
	for _, tc := range cases {
		customer, agency := ApportionInvoiceTotal(decimal.RequireFromString(tc.total), decimal.RequireFromString(tc.claim))
		if !customer.Equal(decimal.RequireFromString(tc.expectedCustomer)) {
			t.Fatalf("total=%s claim=%s expected customer %s, got %s", tc.total, tc.claim, tc.expectedCustomer, customer)
		}
		if !agency.Equal(decimal.RequireFromString(tc.expectedAgency)) {
			t.Fatalf("total=%s claim=%s expected agency %s, got %s", tc.total, tc.claim, tc.expectedAgency, agency)
		}
	}
}
