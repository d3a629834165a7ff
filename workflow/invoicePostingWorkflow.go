package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewInvoicePayment struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   time.Time       `json:"payment_date" binding:"required"`
	FromTaxAgency bool            `json:"from_tax_agency"`
}

// revenueAccountForInvoice picks 3001 or 3011 by majority over the line
// types. Ties go to services.
func revenueAccountForInvoice(invoice *models.Invoice) string {
	goods := 0
	services := 0
	for _, item := range invoice.Items {
		if item.ItemType == models.InvoiceItemTypeGoods {
			goods++
		} else {
			services++
		}
	}
	if goods > services {
		return models.AccountCodeSalesGoods
	}
	return models.AccountCodeSalesServices
}

// vatByRate sums the per-line VAT (rounded per line, so the sums match the
// stored invoice totals) grouped by rate.
func vatByRate(invoice *models.Invoice) map[int64]decimal.Decimal {
	byRate := map[int64]decimal.Decimal{}
	for _, item := range invoice.Items {
		if item.VatPercent == 0 {
			continue
		}
		net := item.Qty.Mul(item.UnitPrice)
		vat := net.Mul(decimal.NewFromInt(item.VatPercent)).DivRound(decimal.NewFromInt(100), 2)
		byRate[item.VatPercent] = byRate[item.VatPercent].Add(vat)
	}
	return byRate
}

func appendVatCredits(entries []models.NewLedgerEntry, invoice *models.Invoice) ([]models.NewLedgerEntry, error) {
	byRate := vatByRate(invoice)
	for _, rate := range []int64{25, 12, 6} {
		vat, ok := byRate[rate]
		if !ok || vat.IsZero() {
			continue
		}
		account, err := models.OutputVatAccountForRate(rate)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.NewLedgerEntry{
			AccountCode: account,
			Description: fmt.Sprintf("Utgående moms %d%%", rate),
			Credit:      vat,
		})
	}
	return entries, nil
}

// BuildInvoicePostings produces the balanced booking entries for an invoice
// under fakturametoden: receivable debit (split over 1510/1513 for ROT/RUT),
// output VAT credits per rate, revenue credit.
func BuildInvoicePostings(invoice *models.Invoice) ([]models.NewLedgerEntry, error) {
	if len(invoice.Items) == 0 {
		return nil, errors.New("invoice has no items")
	}

	var entries []models.NewLedgerEntry
	if invoice.HasRotRut() {
		entries = append(entries,
			models.NewLedgerEntry{
				AccountCode: models.AccountCodeCustomerReceivable,
				Description: "Kundens andel",
				Debit:       invoice.CustomerShare,
			},
			models.NewLedgerEntry{
				AccountCode: models.AccountCodeRotRutReceivable,
				Description: "Skatteverkets andel",
				Debit:       invoice.AgencyShare,
			},
		)
	} else {
		entries = append(entries, models.NewLedgerEntry{
			AccountCode: models.AccountCodeCustomerReceivable,
			Description: "Kundfordran",
			Debit:       invoice.Total,
		})
	}

	entries, err := appendVatCredits(entries, invoice)
	if err != nil {
		return nil, err
	}
	entries = append(entries, models.NewLedgerEntry{
		AccountCode: revenueAccountForInvoice(invoice),
		Description: "Försäljning",
		Credit:      invoice.SubTotal,
	})

	if err := models.ValidateBalanced(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// buildCashMethodPostings books and registers payment in one posting set:
// bank debit against VAT and revenue credits (kontantmetoden).
func buildCashMethodPostings(invoice *models.Invoice) ([]models.NewLedgerEntry, error) {
	entries := []models.NewLedgerEntry{{
		AccountCode: models.AccountCodeBank,
		Description: "Betalning faktura " + invoice.InvoiceNumber,
		Debit:       invoice.Total,
	}}
	entries, err := appendVatCredits(entries, invoice)
	if err != nil {
		return nil, err
	}
	entries = append(entries, models.NewLedgerEntry{
		AccountCode: revenueAccountForInvoice(invoice),
		Description: "Försäljning",
		Credit:      invoice.SubTotal,
	})
	if err := models.ValidateBalanced(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// applyInvoiceStatus updates the invoice from the accounts present in the
// posting set: bank together with a receivable means a payment was
// registered, bank alone means a cash-method combined booking and payment,
// anything else is a plain booking.
func applyInvoiceStatus(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, entries []models.NewLedgerEntry, paidAmount decimal.Decimal, transactionId int) error {
	hasBank := false
	hasReceivable := false
	for _, e := range entries {
		switch e.AccountCode {
		case models.AccountCodeBank:
			hasBank = true
		case models.AccountCodeCustomerReceivable, models.AccountCodeRotRutReceivable:
			hasReceivable = true
		}
	}

	updates := map[string]interface{}{}
	switch {
	case hasBank && hasReceivable:
		amountPaid := invoice.AmountPaid.Add(paidAmount)
		updates["AmountPaid"] = amountPaid
		if amountPaid.GreaterThanOrEqual(invoice.Total) {
			updates["PaymentStatus"] = models.InvoicePaymentStatusPaid
		} else {
			updates["PaymentStatus"] = models.InvoicePaymentStatusPartial
		}
	case hasBank:
		updates["BookedStatus"] = models.InvoiceBookedStatusBooked
		updates["AmountPaid"] = invoice.Total
		updates["PaymentStatus"] = models.InvoicePaymentStatusPaid
		updates["LedgerTransactionId"] = transactionId
	default:
		updates["BookedStatus"] = models.InvoiceBookedStatusBooked
		updates["LedgerTransactionId"] = transactionId
	}
	return tx.WithContext(ctx).Model(invoice).Updates(updates).Error
}

// BookInvoice writes the fakturametoden booking verifikation for an invoice
// and marks it booked. Kontantmetoden invoices are booked when paid.
func BookInvoice(ctx context.Context, invoiceId int) (*models.Invoice, error) {
	logger := config.GetLogger()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	user, err := utils.FetchSingleModel[models.User](ctx, userId)
	if err != nil {
		return nil, err
	}
	if user.BookkeepingMethod == models.BookkeepingMethodCash {
		return nil, errors.New("kontantmetoden invoices are booked when payment is registered")
	}

	invoice, err := utils.FetchModel[models.Invoice](ctx, userId, invoiceId, "Items")
	if err != nil {
		return nil, err
	}
	if invoice.BookedStatus == models.InvoiceBookedStatusBooked {
		return nil, errors.New("invoice is already booked")
	}

	entries, err := BuildInvoicePostings(invoice)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	transaction, err := models.CreateLedgerTransactionTx(ctx, tx, userId, &models.NewLedgerTransaction{
		TransactionDate: invoice.InvoiceDate,
		Description:     "Faktura " + invoice.InvoiceNumber,
		ReferenceType:   models.LedgerReferenceTypeInvoice,
		ReferenceId:     invoice.ID,
		Entries:         entries,
	})
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "invoicePostingWorkflow.go", "BookInvoice", "CreateLedgerTransactionTx", invoice.ID, err)
		return nil, err
	}
	if err := applyInvoiceStatus(ctx, tx, invoice, entries, decimal.Zero, transaction.ID); err != nil {
		tx.Rollback()
		config.LogError(logger, "invoicePostingWorkflow.go", "BookInvoice", "applyInvoiceStatus", invoice.ID, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// RegisterInvoicePayment records a payment against an invoice. Under
// fakturametoden the receivable is settled (1510, or 1513 when Skatteverket
// pays its share); under kontantmetoden the payment also books the invoice.
func RegisterInvoicePayment(ctx context.Context, invoiceId int, input *NewInvoicePayment) (*models.Invoice, error) {
	logger := config.GetLogger()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment amount must be positive")
	}

	user, err := utils.FetchSingleModel[models.User](ctx, userId)
	if err != nil {
		return nil, err
	}
	invoice, err := utils.FetchModel[models.Invoice](ctx, userId, invoiceId, "Items")
	if err != nil {
		return nil, err
	}
	if invoice.PaymentStatus == models.InvoicePaymentStatusPaid {
		return nil, errors.New("invoice is already paid")
	}

	var entries []models.NewLedgerEntry
	paidAmount := input.Amount

	if user.BookkeepingMethod == models.BookkeepingMethodCash {
		if invoice.BookedStatus == models.InvoiceBookedStatusBooked {
			return nil, errors.New("invoice is already booked")
		}
		// one combined booking+payment verifikation covers the whole
		// invoice, so cash-method payments are always in full
		if !input.Amount.Sub(invoice.Total).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)) {
			return nil, errors.New("kontantmetoden payments must cover the full invoice amount")
		}
		entries, err = buildCashMethodPostings(invoice)
		if err != nil {
			return nil, err
		}
		paidAmount = invoice.Total
	} else {
		if invoice.BookedStatus != models.InvoiceBookedStatusBooked {
			return nil, errors.New("invoice must be booked before payments are registered")
		}
		if input.Amount.GreaterThan(invoice.Balance()) {
			return nil, errors.New("payment exceeds the remaining balance")
		}
		receivable := models.AccountCodeCustomerReceivable
		description := "Betalning faktura " + invoice.InvoiceNumber
		if input.FromTaxAgency {
			receivable = models.AccountCodeRotRutReceivable
			description = "Utbetalning Skatteverket faktura " + invoice.InvoiceNumber
		}
		entries = []models.NewLedgerEntry{
			{AccountCode: models.AccountCodeBank, Description: description, Debit: input.Amount},
			{AccountCode: receivable, Description: description, Credit: input.Amount},
		}
	}

	db := config.GetDB()
	tx := db.Begin()
	transaction, err := models.CreateLedgerTransactionTx(ctx, tx, userId, &models.NewLedgerTransaction{
		TransactionDate: input.PaymentDate,
		Description:     "Betalning faktura " + invoice.InvoiceNumber,
		ReferenceType:   models.LedgerReferenceTypeInvoicePayment,
		ReferenceId:     invoice.ID,
		Entries:         entries,
	})
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "invoicePostingWorkflow.go", "RegisterInvoicePayment", "CreateLedgerTransactionTx", invoice.ID, err)
		return nil, err
	}
	if err := applyInvoiceStatus(ctx, tx, invoice, entries, paidAmount, transaction.ID); err != nil {
		tx.Rollback()
		config.LogError(logger, "invoicePostingWorkflow.go", "RegisterInvoicePayment", "applyInvoiceStatus", invoice.ID, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[models.Invoice](ctx, userId, invoiceId, "Items")
}
