package skatteverket

import (
	"strings"
	"testing"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

func rotInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceNumber:       "42",
		PropertyDesignation: "Tomten 1:1",
		SubTotal:            d("10000"),
		VatAmount:           d("2500"),
		Total:               d("12500"),
		RotRutKind:          models.RotRutKindRot,
		RotRutDeduction:     d("3750"),
		RotRutClaimAmount:   d("6250"),
		CustomerShare:       d("6250"),
		AgencyShare:         d("6250"),
		Items: []models.InvoiceItem{
			{
				Qty: d("1"), UnitPrice: d("10000"), VatPercent: 25,
				ItemType: models.InvoiceItemTypeService, RotRutKind: models.RotRutKindRot,
				RotRutCategory: "Vvs", LaborCostExclVat: d("10000"), HoursWorked: d("40"),
			},
		},
	}
}

func rotCustomer() *models.Customer {
	return &models.Customer{Name: "Erik Eriksson", PersonNumber: "198112289874"}
}

func TestGenerateHusFileRot(t *testing.T) {
	paymentDate := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	file, err := GenerateHusFile(rotInvoice(), rotCustomer(), paymentDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "ROT_faktura_42.xml" {
		t.Errorf("file name = %q", file.Name)
	}

	content := string(file.Content)
	for _, want := range []string{
		"<ns2:RotBegaran>",
		"<ns2:Kopare>198112289874</ns2:Kopare>",
		"<ns2:BetalningsDatum>2024-04-10</ns2:BetalningsDatum>",
		"<ns2:PrisForArbete>12500</ns2:PrisForArbete>",
		"<ns2:BetaltBelopp>6250</ns2:BetaltBelopp>",
		"<ns2:BegartBelopp>6250</ns2:BegartBelopp>",
		"<ns2:FakturaNr>42</ns2:FakturaNr>",
		"<ns2:Fastighetsbeteckning>Tomten 1:1</ns2:Fastighetsbeteckning>",
		"<ns2:Vvs>",
		"<ns2:AntalTimmar>40</ns2:AntalTimmar>",
		"<ns2:Materialkostnad>0</ns2:Materialkostnad>",
		"begaran/6.0",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(content, "RutBegaran") {
		t.Error("ROT file must not contain RUT elements")
	}
}

func TestGenerateHusFileRotBostadsratt(t *testing.T) {
	invoice := rotInvoice()
	invoice.PropertyDesignation = ""
	invoice.ApartmentNumber = "1203"
	invoice.BrfOrgNumber = "769600-1234"

	file, err := GenerateHusFile(invoice, rotCustomer(), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(file.Content)
	for _, want := range []string{
		"<ns2:Lagenhetsnummer>1203</ns2:Lagenhetsnummer>",
		"<ns2:BrfOrgNr>769600-1234</ns2:BrfOrgNr>",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(content, "Fastighetsbeteckning") {
		t.Error("bostadsrätt claim must not carry a property designation element")
	}
}

func TestGenerateHusFileRutWithMaterial(t *testing.T) {
	invoice := &models.Invoice{
		InvoiceNumber:     "7",
		RotRutKind:        models.RotRutKindRut,
		RotRutClaimAmount: d("1500"),
		CustomerShare:     d("2250"),
		Items: []models.InvoiceItem{
			{
				Qty: d("1"), UnitPrice: d("3000"), VatPercent: 25,
				ItemType: models.InvoiceItemTypeService, RotRutKind: models.RotRutKindRut,
				RotRutCategory: "Stadning", LaborCostExclVat: d("2400"), HoursWorked: d("12"),
			},
		},
	}
	file, err := GenerateHusFile(invoice, rotCustomer(), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(file.Content)
	for _, want := range []string{
		"<ns2:RutBegaran>",
		"<ns2:Stadning>",
		"<ns2:AntalTimmar>12</ns2:AntalTimmar>",
		// 3000 net minus 2400 labor
		"<ns2:Materialkostnad>600</ns2:Materialkostnad>",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(content, "Fastighetsbeteckning") {
		t.Error("RUT file must not carry a property designation element when none is given")
	}
}

func TestGenerateHusFileValidation(t *testing.T) {
	paymentDate := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no deduction lines", func(t *testing.T) {
		if _, err := GenerateHusFile(&models.Invoice{}, rotCustomer(), paymentDate); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("missing person number", func(t *testing.T) {
		if _, err := GenerateHusFile(rotInvoice(), &models.Customer{Name: "AB Bolaget"}, paymentDate); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("rot requires property identification", func(t *testing.T) {
		invoice := rotInvoice()
		invoice.PropertyDesignation = ""
		if _, err := GenerateHusFile(invoice, rotCustomer(), paymentDate); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("apartment number alone is not enough", func(t *testing.T) {
		invoice := rotInvoice()
		invoice.PropertyDesignation = ""
		invoice.ApartmentNumber = "1203"
		if _, err := GenerateHusFile(invoice, rotCustomer(), paymentDate); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("unknown category", func(t *testing.T) {
		invoice := rotInvoice()
		invoice.Items[0].RotRutCategory = "Stadning" // RUT category on a ROT invoice
		if _, err := GenerateHusFile(invoice, rotCustomer(), paymentDate); err == nil {
			t.Fatal("expected an error")
		}
	})
}
