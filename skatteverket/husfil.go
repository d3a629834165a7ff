// Package skatteverket renders the XML files handed to the Swedish tax
// agency: HUS files for ROT/RUT claims and AGI employer declarations. The
// output is plain template rendering against hard-coded tag tables; nothing
// is validated against an XSD at runtime, so the tables must track the
// published schema versions.
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

// ExportFile is a rendered download: file name plus content.
type ExportFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// Element tags per work category, HUS schema v6.0. Order is fixed by the
// schema, hence slices rather than map iteration.
var rotCategories = []string{
	"Bygg",
	"El",
	"GlasPlatarbete",
	"MarkDraneringarbete",
	"Murning",
	"MalningTapetsering",
	"Vvs",
}

var rutCategories = []string{
	"Barnpassning",
	"Flyttjanster",
	"ITTjanster",
	"KladOchTextilvard",
	"Matlagning",
	"Moblering",
	"OvrigOmsorg",
	"PersonligOmsorg",
	"ReparationAvVitvaror",
	"Snoskottning",
	"Stadning",
	"TillsynAvBostad",
	"Tradgardsarbete",
}

const husFileTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<ns1:Begaran xmlns:ns1="http://xmls.skatteverket.se/se/skatteverket/ht/begaran/6.0" xmlns:ns2="http://xmls.skatteverket.se/se/skatteverket/ht/komponent/begaran/6.0">
  <ns2:NamnPaBegaran>{{.RequestName}}</ns2:NamnPaBegaran>
  <ns2:{{.KindTag}}Begaran>
    <ns2:Arenden>
      <ns2:Arende>
        <ns2:Kopare>{{.BuyerPersonNumber}}</ns2:Kopare>
        <ns2:BetalningsDatum>{{.PaymentDate}}</ns2:BetalningsDatum>
        <ns2:PrisForArbete>{{.PriceForWork}}</ns2:PrisForArbete>
        <ns2:BetaltBelopp>{{.PaidAmount}}</ns2:BetaltBelopp>
        <ns2:BegartBelopp>{{.ClaimedAmount}}</ns2:BegartBelopp>
        <ns2:FakturaNr>{{.InvoiceNumber}}</ns2:FakturaNr>{{if .PropertyDesignation}}
        <ns2:Fastighetsbeteckning>{{.PropertyDesignation}}</ns2:Fastighetsbeteckning>{{end}}{{if .ApartmentNumber}}
        <ns2:Lagenhetsnummer>{{.ApartmentNumber}}</ns2:Lagenhetsnummer>
        <ns2:BrfOrgNr>{{.BrfOrgNumber}}</ns2:BrfOrgNr>{{end}}
        <ns2:UtfortArbete>
{{- range .Categories}}
          <ns2:{{.Tag}}>
            <ns2:AntalTimmar>{{.Hours}}</ns2:AntalTimmar>
            <ns2:Materialkostnad>{{.MaterialCost}}</ns2:Materialkostnad>
          </ns2:{{.Tag}}>
{{- end}}
        </ns2:UtfortArbete>
      </ns2:Arende>
    </ns2:Arenden>
  </ns2:{{.KindTag}}Begaran>
</ns1:Begaran>
`

var husTemplate = template.Must(template.New("husfil").Parse(husFileTemplate))

type husCategoryData struct {
	Tag          string
	Hours        string
	MaterialCost string
}

type husFileData struct {
	RequestName         string
	KindTag             string
	BuyerPersonNumber   string
	PaymentDate         string
	PriceForWork        string
	PaidAmount          string
	ClaimedAmount       string
	InvoiceNumber       string
	PropertyDesignation string
	ApartmentNumber     string
	BrfOrgNumber        string
	Categories          []husCategoryData
}

func categoryTable(kind models.RotRutKind) []string {
	if kind == models.RotRutKindRot {
		return rotCategories
	}
	return rutCategories
}

func wholeKronor(amount decimal.Decimal) string {
	return amount.Round(0).String()
}

// GenerateHusFile renders the ROT/RUT claim for a paid invoice. The claimed
// amount is the 50% split recorded on the invoice. Categories on the lines
// must come from the scheme's fixed table. ROT claims identify the property
// either by Fastighetsbeteckning or, for bostadsrätter, by apartment number
// plus the housing association's org number.
func GenerateHusFile(invoice *models.Invoice, customer *models.Customer, paymentDate time.Time) (*ExportFile, error) {
	if !invoice.HasRotRut() {
		return nil, errors.New("invoice has no ROT/RUT lines")
	}
	if customer.PersonNumber == "" {
		return nil, errors.New("customer person number is required")
	}
	if invoice.RotRutKind == models.RotRutKindRot && invoice.PropertyDesignation == "" &&
		(invoice.ApartmentNumber == "" || invoice.BrfOrgNumber == "") {
		return nil, errors.New("property designation, or apartment number and housing association org number, is required for ROT claims")
	}

	allowed := map[string]bool{}
	for _, tag := range categoryTable(invoice.RotRutKind) {
		allowed[tag] = true
	}

	hours := map[string]decimal.Decimal{}
	material := map[string]decimal.Decimal{}
	for _, item := range invoice.Items {
		if item.RotRutKind == "" {
			continue
		}
		if !allowed[item.RotRutCategory] {
			return nil, fmt.Errorf("unknown %s category %q", invoice.RotRutKind, item.RotRutCategory)
		}
		net := item.Qty.Mul(item.UnitPrice)
		hours[item.RotRutCategory] = hours[item.RotRutCategory].Add(item.HoursWorked)
		material[item.RotRutCategory] = material[item.RotRutCategory].Add(net.Sub(item.LaborCostExclVat))
	}

	var categories []husCategoryData
	for _, tag := range categoryTable(invoice.RotRutKind) {
		if _, ok := hours[tag]; !ok {
			continue
		}
		categories = append(categories, husCategoryData{
			Tag:          tag,
			Hours:        hours[tag].Round(0).String(),
			MaterialCost: wholeKronor(material[tag]),
		})
	}

	data := husFileData{
		RequestName:         fmt.Sprintf("Faktura %s", invoice.InvoiceNumber),
		KindTag:             kindTag(invoice.RotRutKind),
		BuyerPersonNumber:   customer.PersonNumber,
		PaymentDate:         paymentDate.Format("2006-01-02"),
		PriceForWork:        wholeKronor(invoice.LaborCostInclVat()),
		PaidAmount:          wholeKronor(invoice.CustomerShare),
		ClaimedAmount:       wholeKronor(invoice.RotRutClaimAmount),
		InvoiceNumber:       invoice.InvoiceNumber,
		PropertyDesignation: invoice.PropertyDesignation,
		ApartmentNumber:     invoice.ApartmentNumber,
		BrfOrgNumber:        invoice.BrfOrgNumber,
		Categories:          categories,
	}

	var b bytes.Buffer
	if err := husTemplate.Execute(&b, data); err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:    fmt.Sprintf("%s_faktura_%s.xml", invoice.RotRutKind, invoice.InvoiceNumber),
		Content: b.Bytes(),
	}, nil
}

func kindTag(kind models.RotRutKind) string {
	if kind == models.RotRutKindRot {
		return "Rot"
	}
	return "Rut"
}
