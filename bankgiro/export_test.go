package bankgiro

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

func TestGeneratePaymentFile(t *testing.T) {
	created := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	payDate := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	payments := []Payment{
		{Bankgiro: "5402-9681", Reference: "FAKT 1001", Amount: d("1250.50"), PaymentDate: payDate},
		{Bankgiro: "991-2346", Reference: "FAKT 1002", Amount: d("300"), PaymentDate: payDate},
	}

	file, err := GeneratePaymentFile("490-2201", payments, created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "LB_20240315.txt" {
		t.Errorf("file name = %q", file.Name)
	}
	if file.BatchId == "" {
		t.Error("batch id must be set")
	}

	content := string(file.Content)
	if !strings.HasSuffix(content, "\r\n") {
		t.Error("records must end with CRLF")
	}
	lines := strings.Split(strings.TrimRight(content, "\r\n"), "\r\n")
	if len(lines) != 4 {
		t.Fatalf("got %d records, want 4", len(lines))
	}
	for i, line := range lines {
		if len(line) != recordLength {
			t.Errorf("record %d length = %d, want %d", i, len(line), recordLength)
		}
	}

	opening := lines[0]
	if !strings.HasPrefix(opening, "01240315") {
		t.Errorf("opening record = %q", opening)
	}
	if !strings.Contains(opening, "LEVERANTORSBETALNINGAR") {
		t.Error("opening record must carry the layout name")
	}
	if !strings.Contains(opening, "0004902201") {
		t.Error("opening record must carry the zero-padded sender bankgiro")
	}

	first := lines[1]
	if !strings.HasPrefix(first, "35") {
		t.Errorf("payment record = %q", first)
	}
	// receiver right-aligned in 16 digits, amount in öre over 12 digits
	if !strings.Contains(first, "0000000054029681") {
		t.Error("payment record must carry the receiver bankgiro")
	}
	if !strings.Contains(first, "000000125050") {
		t.Error("payment record must carry the amount in öre")
	}
	if !strings.Contains(first, "240325") {
		t.Error("payment record must carry the payment date")
	}
	if !strings.Contains(first, "FAKT 1001") {
		t.Error("payment record must carry the reference")
	}

	trailer := lines[3]
	if !strings.HasPrefix(trailer, "09240315") {
		t.Errorf("trailer record = %q", trailer)
	}
	// 125050 + 30000 öre, then the record count
	if !strings.Contains(trailer, "000000155050"+"00000002") {
		t.Errorf("trailer sum and count wrong: %q", trailer)
	}
}

func TestGeneratePaymentFileBankAccount(t *testing.T) {
	payments := []Payment{
		{
			ClearingNumber: "8327-9",
			BankAccount:    "123456789",
			Reference:      "Lön Anna Andersson",
			Amount:         d("24000"),
			PaymentDate:    time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		},
	}
	file, err := GeneratePaymentFile("490-2201", payments, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(file.Content)
	// clearing padded to 5, account to 11
	if !strings.Contains(content, "8327900123456789") {
		t.Errorf("missing clearing+account receiver field in %q", content)
	}
}

func TestGeneratePaymentFileValidation(t *testing.T) {
	created := time.Now()
	payDate := created.AddDate(0, 0, 5)
	valid := Payment{Bankgiro: "5402-9681", Amount: d("100"), PaymentDate: payDate}

	tests := []struct {
		name     string
		sender   string
		payments []Payment
	}{
		{name: "no payments", sender: "490-2201", payments: nil},
		{name: "bad sender", sender: "12", payments: []Payment{valid}},
		{
			name:     "zero amount",
			sender:   "490-2201",
			payments: []Payment{{Bankgiro: "5402-9681", Amount: decimal.Zero, PaymentDate: payDate}},
		},
		{
			name:     "negative amount",
			sender:   "490-2201",
			payments: []Payment{{Bankgiro: "5402-9681", Amount: d("-5"), PaymentDate: payDate}},
		},
		{
			name:     "bankgiro with letters",
			sender:   "490-2201",
			payments: []Payment{{Bankgiro: "54X2-9681", Amount: d("100"), PaymentDate: payDate}},
		},
		{
			name:     "clearing number too short",
			sender:   "490-2201",
			payments: []Payment{{ClearingNumber: "83", BankAccount: "123456789", Amount: d("100"), PaymentDate: payDate}},
		},
		{
			name:     "account number too long",
			sender:   "490-2201",
			payments: []Payment{{ClearingNumber: "8327", BankAccount: "123456789012", Amount: d("100"), PaymentDate: payDate}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GeneratePaymentFile(tt.sender, tt.payments, created); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
