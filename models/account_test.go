package models

import "testing"

func TestOutputVatAccountForRate(t *testing.T) {
	tests := []struct {
		rate    int64
		want    string
		wantErr bool
	}{
		{rate: 25, want: AccountCodeOutputVat25},
		{rate: 12, want: AccountCodeOutputVat12},
		{rate: 6, want: AccountCodeOutputVat6},
		{rate: 0, wantErr: true},
		{rate: 19, wantErr: true},
	}
	for _, tt := range tests {
		got, err := OutputVatAccountForRate(tt.rate)
		if tt.wantErr {
			if err == nil {
				t.Errorf("rate %d: expected an error", tt.rate)
			}
			continue
		}
		if err != nil {
			t.Errorf("rate %d: unexpected error: %v", tt.rate, err)
			continue
		}
		if got != tt.want {
			t.Errorf("rate %d: account = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestDefaultAccountsWellFormed(t *testing.T) {
	classes := map[string]bool{"Asset": true, "Liability": true, "Income": true, "Expense": true}
	seen := map[string]bool{}
	for _, account := range defaultAccounts {
		if len(account.Code) != 4 {
			t.Errorf("account code %q is not four digits", account.Code)
		}
		if seen[account.Code] {
			t.Errorf("duplicate account code %q", account.Code)
		}
		seen[account.Code] = true
		if account.Name == "" {
			t.Errorf("account %s has no name", account.Code)
		}
		if !classes[account.Class] {
			t.Errorf("account %s has unknown class %q", account.Code, account.Class)
		}
	}
}
