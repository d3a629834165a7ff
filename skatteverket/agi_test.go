package skatteverket

import (
	"strings"
	"testing"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/models"
)

func agiRun() *models.PayrollRun {
	return &models.PayrollRun{
		Month:               3,
		Year:                2024,
		TotalGross:          d("30000"),
		TotalEmployerFees:   d("9426"),
		TotalWithholdingTax: d("6000"),
		Payslips: []models.Payslip{
			{
				GrossPay:       d("30000"),
				WithholdingTax: d("6000"),
				Employee: &models.Employee{
					Name:         "Anna Andersson",
					PersonNumber: "198112289874",
					Address:      "Storgatan 1",
					PostalCode:   "11122",
					City:         "Stockholm",
					StartDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}
}

func agiUser() *models.User {
	return &models.User{OrgNumber: "5561234567", CompanyName: "Nordsaldo AB"}
}

func TestGenerateAgiFile(t *testing.T) {
	created := time.Date(2024, 4, 5, 12, 30, 0, 0, time.UTC)
	file, err := GenerateAgiFile(agiRun(), agiUser(), created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "AGI_202403.xml" {
		t.Errorf("file name = %q", file.Name)
	}

	content := string(file.Content)
	for _, want := range []string{
		`omrade="Arbetsgivardeklaration"`,
		"<agd:Skapad>2024-04-05T12:30:00</agd:Skapad>",
		`<agd:AgRegistreradId faltkod="201">5561234567</agd:AgRegistreradId>`,
		`<agd:RedovisningsPeriod faltkod="006">202403</agd:RedovisningsPeriod>`,
		`<agd:SummaUlagAvgift faltkod="050">30000</agd:SummaUlagAvgift>`,
		`<agd:SummaArbAvgSlf faltkod="487">9426</agd:SummaArbAvgSlf>`,
		`<agd:SummaSkatteavdr faltkod="497">6000</agd:SummaSkatteavdr>`,
		`<agd:BetalningsmottagarId faltkod="215">198112289874</agd:BetalningsmottagarId>`,
		`<agd:Fornamn faltkod="216">Anna</agd:Fornamn>`,
		`<agd:Efternamn faltkod="217">Andersson</agd:Efternamn>`,
		`<agd:GatuAdress faltkod="218">Storgatan 1</agd:GatuAdress>`,
		`<agd:Specifikationsnummer faltkod="570">001</agd:Specifikationsnummer>`,
		`<agd:KontantErsattningUlagAG faltkod="011">30000</agd:KontantErsattningUlagAG>`,
		`<agd:AnstalldFrom faltkod="245">2020-01-01</agd:AnstalldFrom>`,
		`<agd:AvdrPrelSkatt faltkod="001">6000</agd:AvdrPrelSkatt>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	// no benefits on this run
	if strings.Contains(content, `faltkod="012"`) || strings.Contains(content, `faltkod="013"`) {
		t.Error("benefit elements must be omitted when there are no benefit rows")
	}
	if strings.Contains(content, `faltkod="246"`) {
		t.Error("end date element must be omitted while the employee is still employed")
	}
}

func TestGenerateAgiFileTerminatedEmployee(t *testing.T) {
	run := agiRun()
	endDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	run.Payslips[0].Employee.EndDate = &endDate

	file, err := GenerateAgiFile(run, agiUser(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(file.Content)
	if !strings.Contains(content, `<agd:AnstalldFrom faltkod="245">2020-01-01</agd:AnstalldFrom>`) {
		t.Error("missing employment start element")
	}
	if !strings.Contains(content, `<agd:AnstalldTom faltkod="246">2024-03-15</agd:AnstalldTom>`) {
		t.Error("missing employment end element")
	}
}

func TestGenerateAgiFileBenefits(t *testing.T) {
	run := agiRun()
	run.Payslips[0].BenefitsAmount = d("4500")
	run.Payslips[0].ExtraRows = []models.PayslipExtraRow{
		{RowType: models.ExtraRowTypeBenefit, Amount: d("500")},
		{RowType: models.ExtraRowTypeCarBenefit, Amount: d("4000")},
	}
	file, err := GenerateAgiFile(run, agiUser(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(file.Content)
	if !strings.Contains(content, `<agd:SkatteplFormanUlagAG faltkod="012">500</agd:SkatteplFormanUlagAG>`) {
		t.Error("missing benefit element")
	}
	if !strings.Contains(content, `<agd:SkatteplBilformanUlagAG faltkod="013">4000</agd:SkatteplBilformanUlagAG>`) {
		t.Error("missing car benefit element")
	}
}

func TestGenerateAgiFileValidation(t *testing.T) {
	if _, err := GenerateAgiFile(&models.PayrollRun{}, agiUser(), time.Now()); err == nil {
		t.Fatal("expected an error for empty run")
	}
	if _, err := GenerateAgiFile(agiRun(), &models.User{}, time.Now()); err == nil {
		t.Fatal("expected an error for missing org number")
	}
	run := agiRun()
	run.Payslips[0].Employee = nil
	if _, err := GenerateAgiFile(run, agiUser(), time.Now()); err == nil {
		t.Fatal("expected an error for unloaded employee")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{name: "Anna Andersson", first: "Anna", last: "Andersson"},
		{name: "Karl Gustav Svensson", first: "Karl Gustav", last: "Svensson"},
		{name: "Madonna", first: "", last: "Madonna"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.name)
		if first != tt.first || last != tt.last {
			t.Errorf("splitName(%q) = %q, %q; want %q, %q", tt.name, first, last, tt.first, tt.last)
		}
	}
}
