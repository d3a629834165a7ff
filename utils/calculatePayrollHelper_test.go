package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateEmployerFees(t *testing.T) {
	cases := []struct {
		base     string
		expected string
	}{
		{"30000", "9426"},
		{"30500", "9583.1"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got := CalculateEmployerFees(decimal.RequireFromString(tc.base))
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("CalculateEmployerFees(%s) expected %s, got %s", tc.base, tc.expected, got)
		}
	}
}

func TestCalculateWithholdingTax(t *testing.T) {
	cases := []struct {
		gross    string
		percent  string
		expected string
	}{
		{"30000", "20", "6000"},
		{"30000", "31", "9300"},
		{"31333", "30", "9400"},
		{"-100", "30", "0"},
	}
	for _, tc := range cases {
		got := CalculateWithholdingTax(decimal.RequireFromString(tc.gross), decimal.RequireFromString(tc.percent))
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("CalculateWithholdingTax(%s, %s) expected %s, got %s", tc.gross, tc.percent, tc.expected, got)
		}
	}
}

func TestMonthlyVacationAccrual(t *testing.T) {
	cases := []struct {
		employmentPercent string
		expected          string
	}{
		{"100", "2.08"},
		{"50", "1.04"},
		{"75", "1.56"},
	}
	for _, tc := range cases {
		got := MonthlyVacationAccrual(decimal.RequireFromString(tc.employmentPercent))
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("MonthlyVacationAccrual(%s) expected %s, got %s", tc.employmentPercent, tc.expected, got)
		}
	}
}
