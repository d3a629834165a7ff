package skatteverket

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"github.com/shopspring/decimal"
)

// AGI: arbetsgivardeklaration på individnivå, schema 1.1. One HU (huvuduppgift)
// blanket sums the run; one IU (individuppgift) blanket per employee carries
// the per-person bases and withheld tax. The faltkod attributes are fixed by
// the schema's field-code list.
const agiFileTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Skatteverket omrade="Arbetsgivardeklaration" xmlns="http://xmls.skatteverket.se/se/skatteverket/da/instans/schema/1.1" xmlns:agd="http://xmls.skatteverket.se/se/skatteverket/da/komponent/schema/1.1">
  <agd:Avsandare>
    <agd:Programnamn>{{.ProgramName}}</agd:Programnamn>
    <agd:Organisationsnummer>{{.OrgNumber}}</agd:Organisationsnummer>
    <agd:Skapad>{{.Created}}</agd:Skapad>
  </agd:Avsandare>
  <agd:Blankettgemensamt>
    <agd:Arbetsgivare>
      <agd:AgRegistreradId>{{.OrgNumber}}</agd:AgRegistreradId>
    </agd:Arbetsgivare>
  </agd:Blankettgemensamt>
  <agd:Blankett>
    <agd:Arendeinformation>
      <agd:Arendeagare>{{.OrgNumber}}</agd:Arendeagare>
      <agd:Period>{{.Period}}</agd:Period>
    </agd:Arendeinformation>
    <agd:Blankettinnehall>
      <agd:HU>
        <agd:ArbetsgivareHUGROUP>
          <agd:AgRegistreradId faltkod="201">{{.OrgNumber}}</agd:AgRegistreradId>
        </agd:ArbetsgivareHUGROUP>
        <agd:RedovisningsPeriod faltkod="006">{{.Period}}</agd:RedovisningsPeriod>
        <agd:SummaUlagAvgift faltkod="050">{{.TotalFeeBase}}</agd:SummaUlagAvgift>
        <agd:SummaUlagSkatteavdrag faltkod="051">{{.TotalTaxBase}}</agd:SummaUlagSkatteavdrag>
        <agd:SummaArbAvgSlf faltkod="487">{{.TotalEmployerFees}}</agd:SummaArbAvgSlf>
        <agd:SummaSkatteavdr faltkod="497">{{.TotalWithheldTax}}</agd:SummaSkatteavdr>
      </agd:HU>
    </agd:Blankettinnehall>
  </agd:Blankett>
{{- range .Individuals}}
  <agd:Blankett>
    <agd:Arendeinformation>
      <agd:Arendeagare>{{$.OrgNumber}}</agd:Arendeagare>
      <agd:Period>{{$.Period}}</agd:Period>
    </agd:Arendeinformation>
    <agd:Blankettinnehall>
      <agd:IU>
        <agd:ArbetsgivareIUGROUP>
          <agd:AgRegistreradId faltkod="201">{{$.OrgNumber}}</agd:AgRegistreradId>
        </agd:ArbetsgivareIUGROUP>
        <agd:BetalningsmottagareIUGROUP>
          <agd:BetalningsmottagareIDChoice>
            <agd:BetalningsmottagarId faltkod="215">{{.PersonNumber}}</agd:BetalningsmottagarId>
          </agd:BetalningsmottagareIDChoice>
          <agd:Fornamn faltkod="216">{{.FirstName}}</agd:Fornamn>
          <agd:Efternamn faltkod="217">{{.LastName}}</agd:Efternamn>{{if .Street}}
          <agd:GatuAdress faltkod="218">{{.Street}}</agd:GatuAdress>{{end}}{{if .PostalCode}}
          <agd:PostNr faltkod="219">{{.PostalCode}}</agd:PostNr>{{end}}{{if .City}}
          <agd:PostOrt faltkod="220">{{.City}}</agd:PostOrt>{{end}}
        </agd:BetalningsmottagareIUGROUP>
        <agd:RedovisningsPeriod faltkod="006">{{$.Period}}</agd:RedovisningsPeriod>
        <agd:Specifikationsnummer faltkod="570">{{.SpecificationNumber}}</agd:Specifikationsnummer>
        <agd:KontantErsattningUlagAG faltkod="011">{{.CashPay}}</agd:KontantErsattningUlagAG>{{if .BenefitAmount}}
        <agd:SkatteplFormanUlagAG faltkod="012">{{.BenefitAmount}}</agd:SkatteplFormanUlagAG>{{end}}{{if .CarBenefitAmount}}
        <agd:SkatteplBilformanUlagAG faltkod="013">{{.CarBenefitAmount}}</agd:SkatteplBilformanUlagAG>{{end}}{{if .EmployedFrom}}
        <agd:AnstalldFrom faltkod="245">{{.EmployedFrom}}</agd:AnstalldFrom>{{end}}{{if .EmployedTo}}
        <agd:AnstalldTom faltkod="246">{{.EmployedTo}}</agd:AnstalldTom>{{end}}
        <agd:AvdrPrelSkatt faltkod="001">{{.WithheldTax}}</agd:AvdrPrelSkatt>
      </agd:IU>
    </agd:Blankettinnehall>
  </agd:Blankett>
{{- end}}
</Skatteverket>
`

var agiTemplate = template.Must(template.New("agi").Parse(agiFileTemplate))

type agiIndividualData struct {
	PersonNumber        string
	FirstName           string
	LastName            string
	Street              string
	PostalCode          string
	City                string
	SpecificationNumber string
	CashPay             string
	BenefitAmount       string
	CarBenefitAmount    string
	EmployedFrom        string
	EmployedTo          string
	WithheldTax         string
}

type agiFileData struct {
	ProgramName       string
	OrgNumber         string
	Created           string
	Period            string
	TotalFeeBase      string
	TotalTaxBase      string
	TotalEmployerFees string
	TotalWithheldTax  string
	Individuals       []agiIndividualData
}

// splitName breaks "Anna Svensson" into first and last name the way the IU
// blanket wants them. A single token goes into the last name.
func splitName(name string) (string, string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// GenerateAgiFile renders the employer declaration for a booked payroll run.
// Payslips must be loaded with their employees.
func GenerateAgiFile(run *models.PayrollRun, user *models.User, created time.Time) (*ExportFile, error) {
	if len(run.Payslips) == 0 {
		return nil, errors.New("payroll run has no payslips")
	}
	if user.OrgNumber == "" {
		return nil, errors.New("company org number is required")
	}

	period := fmt.Sprintf("%04d%02d", run.Year, run.Month)
	data := agiFileData{
		ProgramName: "Nordsaldo Bokföring",
		OrgNumber:   user.OrgNumber,
		Created:     created.Format("2006-01-02T15:04:05"),
		Period:      period,
	}

	feeBase := run.TotalGross
	data.TotalFeeBase = wholeKronor(feeBase)
	data.TotalTaxBase = wholeKronor(feeBase)
	data.TotalEmployerFees = wholeKronor(run.TotalEmployerFees)
	data.TotalWithheldTax = wholeKronor(run.TotalWithholdingTax)

	for idx, payslip := range run.Payslips {
		if payslip.Employee == nil {
			return nil, errors.New("payslip employee is not loaded")
		}
		firstName, lastName := splitName(payslip.Employee.Name)

		// 013 covers car benefits, 012 the rest
		carBenefitSum := decimal.Zero
		benefitSum := decimal.Zero
		for _, row := range payslip.ExtraRows {
			switch row.RowType {
			case models.ExtraRowTypeCarBenefit:
				carBenefitSum = carBenefitSum.Add(row.Amount)
			case models.ExtraRowTypeBenefit:
				benefitSum = benefitSum.Add(row.Amount)
			}
		}
		carBenefit := ""
		if !carBenefitSum.IsZero() {
			carBenefit = wholeKronor(carBenefitSum)
		}
		benefit := ""
		if !benefitSum.IsZero() {
			benefit = wholeKronor(benefitSum)
		}

		employedFrom := ""
		if !payslip.Employee.StartDate.IsZero() {
			employedFrom = payslip.Employee.StartDate.Format("2006-01-02")
		}
		employedTo := ""
		if payslip.Employee.EndDate != nil {
			employedTo = payslip.Employee.EndDate.Format("2006-01-02")
		}

		data.Individuals = append(data.Individuals, agiIndividualData{
			PersonNumber:        payslip.Employee.PersonNumber,
			FirstName:           firstName,
			LastName:            lastName,
			Street:              payslip.Employee.Address,
			PostalCode:          payslip.Employee.PostalCode,
			City:                payslip.Employee.City,
			SpecificationNumber: fmt.Sprintf("%03d", idx+1),
			CashPay:             wholeKronor(payslip.GrossPay),
			BenefitAmount:       benefit,
			CarBenefitAmount:    carBenefit,
			EmployedFrom:        employedFrom,
			EmployedTo:          employedTo,
			WithheldTax:         wholeKronor(payslip.WithholdingTax),
		})
	}

	var b bytes.Buffer
	if err := agiTemplate.Execute(&b, data); err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:    fmt.Sprintf("AGI_%s.xml", period),
		Content: b.Bytes(),
	}, nil
}
