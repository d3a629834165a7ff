package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID                  int                  `gorm:"primary_key" json:"id"`
	UserId              int                  `gorm:"index;not null" json:"user_id"`
	CustomerId          int                  `gorm:"index;not null" json:"customer_id" binding:"required"`
	Customer            *Customer            `json:"customer"`
	SequenceNo          decimal.Decimal      `gorm:"type:decimal(15);not null" json:"sequence_no"`
	InvoiceNumber       string               `gorm:"size:255;not null" json:"invoice_number"`
	InvoiceDate         time.Time            `gorm:"not null" json:"invoice_date" binding:"required"`
	DueDate             time.Time            `gorm:"not null" json:"due_date"`
	PaymentTerms        PaymentTerms         `gorm:"type:enum('Net10','Net15','Net30','DueOnReceipt','Custom');default:'Net30'" json:"payment_terms"`
	Reference           string               `gorm:"size:255" json:"reference"`
	Notes               string               `gorm:"type:text" json:"notes"`
	SubTotal            decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	VatAmount           decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
	Total               decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total"`
	RotRutKind          RotRutKind           `gorm:"size:3" json:"rot_rut_kind"`
	PropertyDesignation string               `gorm:"size:100" json:"property_designation"`
	ApartmentNumber     string               `gorm:"size:20" json:"apartment_number"`
	BrfOrgNumber        string               `gorm:"size:20" json:"brf_org_number"`
	RotRutDeduction     decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"rot_rut_deduction"`
	RotRutClaimAmount   decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"rot_rut_claim_amount"`
	CustomerShare       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"customer_share"`
	AgencyShare         decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"agency_share"`
	AmountPaid          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	PaymentStatus       InvoicePaymentStatus `gorm:"type:enum('Unpaid','Partial Paid','Paid');default:'Unpaid'" json:"payment_status"`
	BookedStatus        InvoiceBookedStatus  `gorm:"type:enum('Not Booked','Booked');default:'Not Booked'" json:"booked_status"`
	LedgerTransactionId int                  `gorm:"index" json:"ledger_transaction_id"`
	Items               []InvoiceItem        `gorm:"foreignKey:InvoiceId" json:"items"`
	CreatedAt           time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	InvoiceId        int             `gorm:"index;not null" json:"invoice_id"`
	Description      string          `gorm:"size:255;not null" json:"description" binding:"required"`
	Qty              decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty" binding:"required"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price" binding:"required"`
	VatPercent       int64           `gorm:"default:25" json:"vat_percent"`
	ItemType         InvoiceItemType `gorm:"type:enum('G','S');default:'S'" json:"item_type"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	RotRutKind       RotRutKind      `gorm:"size:3" json:"rot_rut_kind"`
	RotRutCategory   string          `gorm:"size:50" json:"rot_rut_category"`
	DeductionPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"deduction_percent"`
	LaborCostExclVat decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"labor_cost_excl_vat"`
	HoursWorked      decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"hours_worked"`
}

type NewInvoice struct {
	CustomerId          int              `json:"customer_id" binding:"required"`
	InvoiceDate         time.Time        `json:"invoice_date" binding:"required"`
	PaymentTerms        PaymentTerms     `json:"payment_terms"`
	DueDate             *time.Time       `json:"due_date"`
	Reference           string           `json:"reference"`
	Notes               string           `json:"notes"`
	PropertyDesignation string           `json:"property_designation"`
	ApartmentNumber     string           `json:"apartment_number"`
	BrfOrgNumber        string           `json:"brf_org_number"`
	Items               []NewInvoiceItem `json:"items" binding:"required"`
}

type NewInvoiceItem struct {
	Description      string          `json:"description" binding:"required"`
	Qty              decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"required"`
	VatPercent       int64           `json:"vat_percent"`
	ItemType         InvoiceItemType `json:"item_type"`
	RotRutKind       RotRutKind      `json:"rot_rut_kind"`
	RotRutCategory   string          `json:"rot_rut_category"`
	LaborCostExclVat decimal.Decimal `json:"labor_cost_excl_vat"`
	HoursWorked      decimal.Decimal `json:"hours_worked"`
}

type InvoicesConnection struct {
	Edges    []*InvoicesEdge `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

type InvoicesEdge struct {
	Cursor string   `json:"cursor"`
	Node   *Invoice `json:"node"`
}

func (i *Invoice) GetId() int {
	return i.ID
}

func (i InvoiceItem) GetId() int {
	return i.ID
}

// HasRotRut reports whether any line carries a ROT or RUT deduction.
func (i *Invoice) HasRotRut() bool {
	return i.RotRutKind != ""
}

// Balance is what remains to be paid across both payer shares.
func (i *Invoice) Balance() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// LaborCostInclVat sums labor cost including VAT over the deduction lines.
func (i *Invoice) LaborCostInclVat() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		if item.RotRutKind == "" {
			continue
		}
		vatFactor := decimal.NewFromInt(100 + item.VatPercent).Div(decimal.NewFromInt(100))
		total = total.Add(item.LaborCostExclVat.Mul(vatFactor))
	}
	return total.Round(2)
}

func dueDateFromTerms(invoiceDate time.Time, terms PaymentTerms, customDueDate *time.Time) (time.Time, error) {
	switch terms {
	case PaymentTermsNet10:
		return invoiceDate.AddDate(0, 0, 10), nil
	case PaymentTermsNet15:
		return invoiceDate.AddDate(0, 0, 15), nil
	case PaymentTermsNet30, "":
		return invoiceDate.AddDate(0, 0, 30), nil
	case PaymentTermsDueOnReceipt:
		return invoiceDate, nil
	case PaymentTermsCustom:
		if customDueDate == nil {
			return time.Time{}, errors.New("due date is required for custom payment terms")
		}
		if customDueDate.Before(invoiceDate) {
			return time.Time{}, errors.New("due date must not be before the invoice date")
		}
		return *customDueDate, nil
	}
	return time.Time{}, errors.New("invalid payment terms")
}

// receiveInvoiceItems validates the input lines and computes the per-line and
// invoice totals. A single invoice never mixes ROT and RUT lines.
func receiveInvoiceItems(inputItems []NewInvoiceItem) ([]InvoiceItem, *Invoice, error) {
	if len(inputItems) == 0 {
		return nil, nil, errors.New("at least one invoice item is required")
	}

	items := make([]InvoiceItem, 0, len(inputItems))
	subTotal := decimal.Zero
	vatAmount := decimal.Zero
	var rotRutKind RotRutKind
	laborInclVat := decimal.Zero

	for _, input := range inputItems {
		if input.Qty.LessThanOrEqual(decimal.Zero) {
			return nil, nil, errors.New("quantity must be positive")
		}
		if input.UnitPrice.IsNegative() {
			return nil, nil, errors.New("unit price must not be negative")
		}
		if _, err := OutputVatAccountForRate(input.VatPercent); input.VatPercent != 0 && err != nil {
			return nil, nil, err
		}
		itemType := input.ItemType
		if itemType == "" {
			itemType = InvoiceItemTypeService
		}

		net := input.Qty.Mul(input.UnitPrice)
		vat := net.Mul(decimal.NewFromInt(input.VatPercent)).DivRound(decimal.NewFromInt(100), 2)

		deductionPercent := decimal.Zero
		if input.RotRutKind != "" {
			if err := input.RotRutKind.Valid(); err != nil {
				return nil, nil, err
			}
			if itemType != InvoiceItemTypeService {
				return nil, nil, errors.New("ROT/RUT deductions apply to service lines only")
			}
			if input.LaborCostExclVat.LessThanOrEqual(decimal.Zero) {
				return nil, nil, errors.New("labor cost is required for ROT/RUT lines")
			}
			if input.LaborCostExclVat.GreaterThan(net) {
				return nil, nil, errors.New("labor cost must not exceed the line amount")
			}
			if input.RotRutCategory == "" {
				return nil, nil, errors.New("ROT/RUT category is required")
			}
			if rotRutKind != "" && rotRutKind != input.RotRutKind {
				return nil, nil, errors.New("an invoice cannot mix ROT and RUT lines")
			}
			rotRutKind = input.RotRutKind
			deductionPercent = utils.NominalDeductionPercent(input.RotRutKind == RotRutKindRot)

			vatFactor := decimal.NewFromInt(100 + input.VatPercent).Div(decimal.NewFromInt(100))
			laborInclVat = laborInclVat.Add(input.LaborCostExclVat.Mul(vatFactor))
		}

		subTotal = subTotal.Add(net)
		vatAmount = vatAmount.Add(vat)
		items = append(items, InvoiceItem{
			Description:      input.Description,
			Qty:              input.Qty,
			UnitPrice:        input.UnitPrice,
			VatPercent:       input.VatPercent,
			ItemType:         itemType,
			Amount:           net.Add(vat),
			RotRutKind:       input.RotRutKind,
			RotRutCategory:   input.RotRutCategory,
			DeductionPercent: deductionPercent,
			LaborCostExclVat: input.LaborCostExclVat,
			HoursWorked:      input.HoursWorked,
		})
	}

	total := subTotal.Add(vatAmount)
	totals := Invoice{
		SubTotal:   subTotal,
		VatAmount:  vatAmount,
		Total:      total,
		RotRutKind: rotRutKind,
	}
	if rotRutKind != "" {
		laborInclVat = laborInclVat.Round(2)
		totals.RotRutDeduction = utils.CalculateRotRutDeduction(laborInclVat, rotRutKind == RotRutKindRot)
		totals.RotRutClaimAmount = utils.CalculateClaimAmount(laborInclVat)
		totals.CustomerShare, totals.AgencyShare = utils.ApportionInvoiceTotal(total, totals.RotRutClaimAmount)
	} else {
		totals.CustomerShare = total
	}
	return items, &totals, nil
}

func validateRotRutCustomer(ctx context.Context, userId int, customerId int, kind RotRutKind) error {
	if kind == "" {
		return nil
	}
	customer, err := utils.FetchModel[Customer](ctx, userId, customerId)
	if err != nil {
		return err
	}
	if customer.PersonNumber == "" {
		return errors.New("customer person number is required for ROT/RUT invoices")
	}
	return nil
}

// validateRotProperty: ROT work happens on a property, so the claim needs a
// fastighetsbeteckning or, for bostadsrätter, apartment number plus the
// association's org number.
func validateRotProperty(input *NewInvoice, kind RotRutKind) error {
	if kind != RotRutKindRot {
		return nil
	}
	if input.PropertyDesignation != "" {
		return nil
	}
	if input.ApartmentNumber != "" && input.BrfOrgNumber != "" {
		return nil
	}
	return errors.New("property designation, or apartment number and housing association org number, is required for ROT invoices")
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Customer](ctx, userId, input.CustomerId); err != nil {
		return nil, err
	}

	items, totals, err := receiveInvoiceItems(input.Items)
	if err != nil {
		return nil, err
	}
	if err := validateRotRutCustomer(ctx, userId, input.CustomerId, totals.RotRutKind); err != nil {
		return nil, err
	}
	if err := validateRotProperty(input, totals.RotRutKind); err != nil {
		return nil, err
	}

	terms := input.PaymentTerms
	if terms == "" {
		terms = PaymentTermsNet30
	}
	dueDate, err := dueDateFromTerms(input.InvoiceDate, terms, input.DueDate)
	if err != nil {
		return nil, err
	}

	seqNo, err := utils.GetSequence[Invoice](ctx, userId)
	if err != nil {
		return nil, err
	}

	invoice := Invoice{
		UserId:              userId,
		CustomerId:          input.CustomerId,
		SequenceNo:          decimal.NewFromInt(seqNo),
		InvoiceNumber:       fmt.Sprint(seqNo),
		InvoiceDate:         input.InvoiceDate,
		DueDate:             dueDate,
		PaymentTerms:        terms,
		Reference:           input.Reference,
		Notes:               input.Notes,
		PropertyDesignation: input.PropertyDesignation,
		ApartmentNumber:     input.ApartmentNumber,
		BrfOrgNumber:        input.BrfOrgNumber,
		SubTotal:            totals.SubTotal,
		VatAmount:           totals.VatAmount,
		Total:               totals.Total,
		RotRutKind:          totals.RotRutKind,
		RotRutDeduction:     totals.RotRutDeduction,
		RotRutClaimAmount:   totals.RotRutClaimAmount,
		CustomerShare:       totals.CustomerShare,
		AgencyShare:         totals.AgencyShare,
		PaymentStatus:       InvoicePaymentStatusUnpaid,
		BookedStatus:        InvoiceBookedStatusNotBooked,
		Items:               items,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if invoice.BookedStatus == InvoiceBookedStatusBooked {
		return nil, errors.New("booked invoices cannot be edited")
	}

	if err := utils.ValidateResourceId[Customer](ctx, userId, input.CustomerId); err != nil {
		return nil, err
	}
	items, totals, err := receiveInvoiceItems(input.Items)
	if err != nil {
		return nil, err
	}
	if err := validateRotRutCustomer(ctx, userId, input.CustomerId, totals.RotRutKind); err != nil {
		return nil, err
	}
	if err := validateRotProperty(input, totals.RotRutKind); err != nil {
		return nil, err
	}

	terms := input.PaymentTerms
	if terms == "" {
		terms = PaymentTermsNet30
	}
	dueDate, err := dueDateFromTerms(input.InvoiceDate, terms, input.DueDate)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for idx := range items {
		items[idx].InvoiceId = id
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"CustomerId":          input.CustomerId,
		"InvoiceDate":         input.InvoiceDate,
		"DueDate":             dueDate,
		"PaymentTerms":        terms,
		"Reference":           input.Reference,
		"Notes":               input.Notes,
		"PropertyDesignation": input.PropertyDesignation,
		"ApartmentNumber":     input.ApartmentNumber,
		"BrfOrgNumber":        input.BrfOrgNumber,
		"SubTotal":            totals.SubTotal,
		"VatAmount":           totals.VatAmount,
		"Total":               totals.Total,
		"RotRutKind":          totals.RotRutKind,
		"RotRutDeduction":     totals.RotRutDeduction,
		"RotRutClaimAmount":   totals.RotRutClaimAmount,
		"CustomerShare":       totals.CustomerShare,
		"AgencyShare":         totals.AgencyShare,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invoice.Items = items
	return invoice, nil
}

// DeleteInvoice removes the invoice, its lines, and every verifikation that
// was generated from it.
func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, userId, id, "Items")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	var linked []LedgerTransaction
	err = tx.WithContext(ctx).
		Where("user_id = ? AND reference_type IN ? AND reference_id = ?",
			userId, []LedgerReferenceType{LedgerReferenceTypeInvoice, LedgerReferenceTypeInvoicePayment}, id).
		Find(&linked).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, transaction := range linked {
		if err := DeleteLedgerTransactionTx(ctx, tx, userId, transaction.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Invoice](ctx, userId, id, "Items", "Customer")
}

func PaginateInvoices(ctx context.Context, limit *int, after *string, customerId *int, paymentStatus *InvoicePaymentStatus, bookedStatus *InvoiceBookedStatus) (*InvoicesConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*InvoicesEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Customer").Where("user_id = ?", userId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if paymentStatus != nil && *paymentStatus != "" {
		dbCtx = dbCtx.Where("payment_status = ?", *paymentStatus)
	}
	if bookedStatus != nil && *bookedStatus != "" {
		dbCtx = dbCtx.Where("booked_status = ?", *bookedStatus)
	}

	var results []*Invoice
	var err error
	if decodedCursor == "" {
		err = dbCtx.Order("created_at DESC").Limit(*limit + 1).Find(&results).Error
	} else {
		err = dbCtx.Order("created_at DESC").Limit(*limit+1).Where("created_at < ?", decodedCursor).Find(&results).Error
	}
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		if count == *limit {
			hasNextPage = true
		}
		if count < *limit {
			edges[count] = &InvoicesEdge{
				Cursor: EncodeCursor(result.CreatedAt.String()),
				Node:   result,
			}
			count++
		}
	}

	pageInfo := PageInfo{
		HasNextPage: &hasNextPage,
	}
	if count > 0 {
		pageInfo.StartCursor = EncodeCursor(edges[0].Node.CreatedAt.String())
		pageInfo.EndCursor = EncodeCursor(edges[count-1].Node.CreatedAt.String())
	}

	connection := InvoicesConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
