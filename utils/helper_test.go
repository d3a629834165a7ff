package utils

import (
	"testing"
	"time"
)

func TestValidateOrgOrPersonNumber(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{name: "person number with separator", number: "811228-9874"},
		{name: "person number without separator", number: "8112289874"},
		{name: "twelve digit person number", number: "198112289874"},
		{name: "org number", number: "556123-4567"},
		{name: "bad checksum", number: "811228-9875", wantErr: true},
		{name: "too short", number: "81122898", wantErr: true},
		{name: "letters", number: "81122X-9874", wantErr: true},
		{name: "empty", number: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrgOrPersonNumber(tt.number)
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("anna@example.se") {
		t.Error("valid address rejected")
	}
	for _, bad := range []string{"", "anna", "anna@", "@example.se"} {
		if IsValidEmail(bad) {
			t.Errorf("invalid address %q accepted", bad)
		}
	}
}

func TestGetMonthRange(t *testing.T) {
	start, end := GetMonthRange(2024, time.February)
	if start != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %s", start)
	}
	// 2024 is a leap year
	if end != time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC) {
		t.Errorf("end = %s", end)
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"2610", "3011", "2610", "1510"})
	if len(got) != 3 {
		t.Fatalf("got %d elements, want 3", len(got))
	}
	if got[0] != "2610" || got[1] != "3011" || got[2] != "1510" {
		t.Errorf("order not preserved: %v", got)
	}
}
