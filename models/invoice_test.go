package models

import (
	"testing"
	"time"
)

func TestDueDateFromTerms(t *testing.T) {
	invoiceDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	custom := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	tooEarly := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		terms      PaymentTerms
		customDate *time.Time
		want       time.Time
		wantErr    bool
	}{
		{name: "net 10", terms: PaymentTermsNet10, want: invoiceDate.AddDate(0, 0, 10)},
		{name: "net 15", terms: PaymentTermsNet15, want: invoiceDate.AddDate(0, 0, 15)},
		{name: "net 30", terms: PaymentTermsNet30, want: invoiceDate.AddDate(0, 0, 30)},
		{name: "empty defaults to net 30", terms: "", want: invoiceDate.AddDate(0, 0, 30)},
		{name: "due on receipt", terms: PaymentTermsDueOnReceipt, want: invoiceDate},
		{name: "custom", terms: PaymentTermsCustom, customDate: &custom, want: custom},
		{name: "custom without date", terms: PaymentTermsCustom, wantErr: true},
		{name: "custom before invoice date", terms: PaymentTermsCustom, customDate: &tooEarly, wantErr: true},
		{name: "unknown terms", terms: PaymentTerms("Net90"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dueDateFromTerms(invoiceDate, tt.terms, tt.customDate)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("due date = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReceiveInvoiceItemsTotals(t *testing.T) {
	items, totals, err := receiveInvoiceItems([]NewInvoiceItem{
		{Description: "Konsultarbete", Qty: d("2"), UnitPrice: d("500"), VatPercent: 25},
		{Description: "Material", Qty: d("1"), UnitPrice: d("200"), VatPercent: 12, ItemType: InvoiceItemTypeGoods},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if !totals.SubTotal.Equal(d("1200")) {
		t.Errorf("sub total = %s, want 1200", totals.SubTotal)
	}
	// 1000*0.25 + 200*0.12
	if !totals.VatAmount.Equal(d("274")) {
		t.Errorf("vat amount = %s, want 274", totals.VatAmount)
	}
	if !totals.Total.Equal(d("1474")) {
		t.Errorf("total = %s, want 1474", totals.Total)
	}
	if totals.RotRutKind != "" {
		t.Errorf("rot rut kind = %q, want empty", totals.RotRutKind)
	}
	// without deductions the customer pays everything
	if !totals.CustomerShare.Equal(totals.Total) {
		t.Errorf("customer share = %s, want %s", totals.CustomerShare, totals.Total)
	}
	if !items[0].Amount.Equal(d("1250")) {
		t.Errorf("line amount = %s, want 1250", items[0].Amount)
	}
}

func TestReceiveInvoiceItemsRotDeduction(t *testing.T) {
	items, totals, err := receiveInvoiceItems([]NewInvoiceItem{
		{
			Description:      "Renovering badrum",
			Qty:              d("1"),
			UnitPrice:        d("10000"),
			VatPercent:       25,
			ItemType:         InvoiceItemTypeService,
			RotRutKind:       RotRutKindRot,
			RotRutCategory:   "Vvs",
			LaborCostExclVat: d("10000"),
			HoursWorked:      d("40"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Total.Equal(d("12500")) {
		t.Errorf("total = %s, want 12500", totals.Total)
	}
	if totals.RotRutKind != RotRutKindRot {
		t.Errorf("rot rut kind = %q, want ROT", totals.RotRutKind)
	}
	// nominal ROT rate on labor incl VAT
	if !totals.RotRutDeduction.Equal(d("3750")) {
		t.Errorf("deduction = %s, want 3750", totals.RotRutDeduction)
	}
	// the claimed amount is half the labor cost incl VAT
	if !totals.RotRutClaimAmount.Equal(d("6250")) {
		t.Errorf("claim amount = %s, want 6250", totals.RotRutClaimAmount)
	}
	if !totals.CustomerShare.Equal(d("6250")) {
		t.Errorf("customer share = %s, want 6250", totals.CustomerShare)
	}
	if !totals.AgencyShare.Equal(d("6250")) {
		t.Errorf("agency share = %s, want 6250", totals.AgencyShare)
	}
	if !totals.CustomerShare.Add(totals.AgencyShare).Equal(totals.Total) {
		t.Error("shares must sum to the invoice total")
	}
	if !items[0].DeductionPercent.Equal(d("30")) {
		t.Errorf("deduction percent = %s, want 30", items[0].DeductionPercent)
	}
}

func TestReceiveInvoiceItemsValidation(t *testing.T) {
	tests := []struct {
		name  string
		items []NewInvoiceItem
	}{
		{name: "no items", items: nil},
		{
			name:  "zero quantity",
			items: []NewInvoiceItem{{Description: "x", Qty: d("0"), UnitPrice: d("100")}},
		},
		{
			name:  "negative price",
			items: []NewInvoiceItem{{Description: "x", Qty: d("1"), UnitPrice: d("-5")}},
		},
		{
			name:  "unsupported vat rate",
			items: []NewInvoiceItem{{Description: "x", Qty: d("1"), UnitPrice: d("100"), VatPercent: 19}},
		},
		{
			name: "deduction on goods line",
			items: []NewInvoiceItem{{
				Description: "x", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
				ItemType: InvoiceItemTypeGoods, RotRutKind: RotRutKindRut,
				RotRutCategory: "Stadning", LaborCostExclVat: d("100"),
			}},
		},
		{
			name: "deduction without labor cost",
			items: []NewInvoiceItem{{
				Description: "x", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
				RotRutKind: RotRutKindRut, RotRutCategory: "Stadning",
			}},
		},
		{
			name: "labor cost above line amount",
			items: []NewInvoiceItem{{
				Description: "x", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
				RotRutKind: RotRutKindRut, RotRutCategory: "Stadning", LaborCostExclVat: d("150"),
			}},
		},
		{
			name: "deduction without category",
			items: []NewInvoiceItem{{
				Description: "x", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
				RotRutKind: RotRutKindRot, LaborCostExclVat: d("100"),
			}},
		},
		{
			name: "mixed ROT and RUT",
			items: []NewInvoiceItem{
				{
					Description: "a", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
					RotRutKind: RotRutKindRot, RotRutCategory: "Vvs", LaborCostExclVat: d("100"),
				},
				{
					Description: "b", Qty: d("1"), UnitPrice: d("100"), VatPercent: 25,
					RotRutKind: RotRutKindRut, RotRutCategory: "Stadning", LaborCostExclVat: d("100"),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := receiveInvoiceItems(tt.items); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestInvoiceLaborCostInclVat(t *testing.T) {
	invoice := Invoice{
		Items: []InvoiceItem{
			{VatPercent: 25, RotRutKind: RotRutKindRut, LaborCostExclVat: d("1000")},
			{VatPercent: 25, LaborCostExclVat: d("500")}, // no deduction, skipped
			{VatPercent: 12, RotRutKind: RotRutKindRut, LaborCostExclVat: d("100")},
		},
	}
	if got := invoice.LaborCostInclVat(); !got.Equal(d("1362")) {
		t.Errorf("labor cost incl vat = %s, want 1362", got)
	}
}

func TestInvoiceBalance(t *testing.T) {
	invoice := Invoice{Total: d("1250"), AmountPaid: d("1000")}
	if got := invoice.Balance(); !got.Equal(d("250")) {
		t.Errorf("balance = %s, want 250", got)
	}
}
