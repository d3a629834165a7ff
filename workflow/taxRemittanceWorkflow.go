package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
)

// BuildTaxRemittancePostings settles a booked payroll run's withheld tax and
// employer fees against the tax account.
func BuildTaxRemittancePostings(run *models.PayrollRun) ([]models.NewLedgerEntry, error) {
	if run.TotalWithholdingTax.IsZero() && run.TotalEmployerFees.IsZero() {
		return nil, errors.New("nothing to remit")
	}

	var entries []models.NewLedgerEntry
	if !run.TotalWithholdingTax.IsZero() {
		entries = append(entries, models.NewLedgerEntry{
			AccountCode: models.AccountCodeEmployeeTax,
			Description: "Avdragen preliminärskatt",
			Debit:       run.TotalWithholdingTax,
		})
	}
	if !run.TotalEmployerFees.IsZero() {
		entries = append(entries, models.NewLedgerEntry{
			AccountCode: models.AccountCodeEmployerFees,
			Description: "Arbetsgivaravgifter",
			Debit:       run.TotalEmployerFees,
		})
	}
	entries = append(entries, models.NewLedgerEntry{
		AccountCode: models.AccountCodeTaxAccount,
		Description: "Skattekonto",
		Credit:      run.TotalWithholdingTax.Add(run.TotalEmployerFees),
	})

	if err := models.ValidateBalanced(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemitPayrollTaxes books the monthly payment of withheld tax and employer
// fees for a booked payroll run.
func RemitPayrollTaxes(ctx context.Context, runId int, paymentDate time.Time) (*models.LedgerTransaction, error) {
	logger := config.GetLogger()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	run, err := utils.FetchModel[models.PayrollRun](ctx, userId, runId)
	if err != nil {
		return nil, err
	}
	if run.Status != models.PayrollRunStatusBooked {
		return nil, errors.New("payroll run must be booked before taxes are remitted")
	}

	count, err := utils.ResourceCountWhere[models.LedgerTransaction](ctx, userId,
		"reference_type = ? AND reference_id = ?", models.LedgerReferenceTypeTaxRemittance, run.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("taxes for this payroll run are already remitted")
	}

	entries, err := BuildTaxRemittancePostings(run)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	transaction, err := models.CreateLedgerTransactionTx(ctx, tx, userId, &models.NewLedgerTransaction{
		TransactionDate: paymentDate,
		Description:     fmt.Sprintf("Skatteinbetalning lön %d/%d", run.Month, run.Year),
		ReferenceType:   models.LedgerReferenceTypeTaxRemittance,
		ReferenceId:     run.ID,
		Entries:         entries,
	})
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "taxRemittanceWorkflow.go", "RemitPayrollTaxes", "CreateLedgerTransactionTx", run.ID, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return transaction, nil
}
