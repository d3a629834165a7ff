package models

import "errors"

type BookkeepingMethod string

const (
	BookkeepingMethodInvoice BookkeepingMethod = "Fakturametoden"
	BookkeepingMethodCash    BookkeepingMethod = "Kontantmetoden"
)

func (m BookkeepingMethod) Valid() error {
	switch m {
	case BookkeepingMethodInvoice, BookkeepingMethodCash:
		return nil
	}
	return errors.New("invalid bookkeeping method")
}

type VatPeriod string

const (
	VatPeriodMonthly   VatPeriod = "Monthly"
	VatPeriodQuarterly VatPeriod = "Quarterly"
	VatPeriodYearly    VatPeriod = "Yearly"
)

func (p VatPeriod) Valid() error {
	switch p {
	case VatPeriodMonthly, VatPeriodQuarterly, VatPeriodYearly:
		return nil
	}
	return errors.New("invalid VAT period")
}

type InvoicePaymentStatus string

const (
	InvoicePaymentStatusUnpaid  InvoicePaymentStatus = "Unpaid"
	InvoicePaymentStatusPartial InvoicePaymentStatus = "Partial Paid"
	InvoicePaymentStatusPaid    InvoicePaymentStatus = "Paid"
)

type InvoiceBookedStatus string

const (
	InvoiceBookedStatusNotBooked InvoiceBookedStatus = "Not Booked"
	InvoiceBookedStatusBooked    InvoiceBookedStatus = "Booked"
)

type InvoiceItemType string

const (
	InvoiceItemTypeGoods   InvoiceItemType = "G"
	InvoiceItemTypeService InvoiceItemType = "S"
)

type RotRutKind string

const (
	RotRutKindRot RotRutKind = "ROT"
	RotRutKindRut RotRutKind = "RUT"
)

func (k RotRutKind) Valid() error {
	switch k {
	case RotRutKindRot, RotRutKindRut:
		return nil
	}
	return errors.New("invalid ROT/RUT kind")
}

type PaymentTerms string

const (
	PaymentTermsNet10        PaymentTerms = "Net10"
	PaymentTermsNet15        PaymentTerms = "Net15"
	PaymentTermsNet30        PaymentTerms = "Net30"
	PaymentTermsDueOnReceipt PaymentTerms = "DueOnReceipt"
	PaymentTermsCustom       PaymentTerms = "Custom"
)

type PayrollRunStatus string

const (
	PayrollRunStatusDraft  PayrollRunStatus = "Draft"
	PayrollRunStatusBooked PayrollRunStatus = "Booked"
)

type ExtraRowType string

const (
	ExtraRowTypeTaxable    ExtraRowType = "Taxable"
	ExtraRowTypeNonTaxable ExtraRowType = "NonTaxable"
	ExtraRowTypeBenefit    ExtraRowType = "Benefit"
	ExtraRowTypeCarBenefit ExtraRowType = "CarBenefit"
)

func (t ExtraRowType) Valid() error {
	switch t {
	case ExtraRowTypeTaxable, ExtraRowTypeNonTaxable, ExtraRowTypeBenefit, ExtraRowTypeCarBenefit:
		return nil
	}
	return errors.New("invalid extra row type")
}

type VacationEntryType string

const (
	VacationEntryTypeAccrued VacationEntryType = "Accrued"
	VacationEntryTypeUsed    VacationEntryType = "Used"
	VacationEntryTypeSaved   VacationEntryType = "Saved"
	VacationEntryTypeAdvance VacationEntryType = "Advance"
	VacationEntryTypePaid    VacationEntryType = "Paid"
)

func (t VacationEntryType) Valid() error {
	switch t {
	case VacationEntryTypeAccrued, VacationEntryTypeUsed, VacationEntryTypeSaved,
		VacationEntryTypeAdvance, VacationEntryTypePaid:
		return nil
	}
	return errors.New("invalid vacation entry type")
}
