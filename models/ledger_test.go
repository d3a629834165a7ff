package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

func TestValidateBalanced(t *testing.T) {
	tests := []struct {
		name    string
		entries []NewLedgerEntry
		wantErr bool
	}{
		{
			name: "simple balanced pair",
			entries: []NewLedgerEntry{
				{AccountCode: "1930", Debit: d("1000")},
				{AccountCode: "3011", Credit: d("1000")},
			},
		},
		{
			name: "balanced within tolerance",
			entries: []NewLedgerEntry{
				{AccountCode: "1510", Debit: d("1000.01")},
				{AccountCode: "3011", Credit: d("1000")},
			},
		},
		{
			name: "off by more than a cent",
			entries: []NewLedgerEntry{
				{AccountCode: "1510", Debit: d("1000.02")},
				{AccountCode: "3011", Credit: d("1000")},
			},
			wantErr: true,
		},
		{
			name: "multi-leg balanced",
			entries: []NewLedgerEntry{
				{AccountCode: "1510", Debit: d("1250")},
				{AccountCode: "2610", Credit: d("250")},
				{AccountCode: "3011", Credit: d("1000")},
			},
		},
		{
			name:    "no entries",
			entries: nil,
			wantErr: true,
		},
		{
			name: "entry with neither side",
			entries: []NewLedgerEntry{
				{AccountCode: "1930"},
				{AccountCode: "3011", Credit: d("0")},
			},
			wantErr: true,
		},
		{
			name: "negative debit",
			entries: []NewLedgerEntry{
				{AccountCode: "1930", Debit: d("-100")},
				{AccountCode: "3011", Credit: d("-100")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBalanced(tt.entries)
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateBalancedReportsUnbalanced(t *testing.T) {
	err := ValidateBalanced([]NewLedgerEntry{
		{AccountCode: "1930", Debit: d("500")},
		{AccountCode: "3011", Credit: d("300")},
	})
	if !errors.Is(err, ErrorUnbalancedTransaction) {
		t.Fatalf("want ErrorUnbalancedTransaction, got %v", err)
	}
}

func TestReceiveLedgerEntriesTotal(t *testing.T) {
	input := &NewLedgerTransaction{
		Entries: []NewLedgerEntry{
			{AccountCode: "1510", Debit: d("1250")},
			{AccountCode: "2610", Credit: d("250")},
			{AccountCode: "3011", Credit: d("1000")},
		},
	}
	entries, total, err := receiveLedgerEntries(input, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if !total.Equal(d("1250")) {
		t.Errorf("total amount = %s, want 1250", total)
	}
	for _, e := range entries {
		if e.LedgerTransactionId != 7 {
			t.Errorf("entry transaction id = %d, want 7", e.LedgerTransactionId)
		}
	}
}
