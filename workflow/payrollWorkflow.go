package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
)

// semesterlön accrual rate on gross pay
var vacationAccrualPercent = decimal.NewFromInt(12)

// BuildPayrollPostings produces the balanced posting set for a payroll run:
// salary and reimbursement costs, employer fees, vacation accrual with its
// fees, against the withholding, fee, and vacation liabilities and the net
// bank payment.
func BuildPayrollPostings(run *models.PayrollRun) ([]models.NewLedgerEntry, error) {
	if len(run.Payslips) == 0 {
		return nil, errors.New("payroll run has no payslips")
	}

	grossCash := decimal.Zero
	nonTaxable := decimal.Zero
	employerFees := decimal.Zero
	withholdingTax := decimal.Zero
	netPay := decimal.Zero
	for _, payslip := range run.Payslips {
		grossCash = grossCash.Add(payslip.GrossPay)
		nonTaxable = nonTaxable.Add(payslip.NonTaxableAmount)
		employerFees = employerFees.Add(payslip.EmployerFees)
		withholdingTax = withholdingTax.Add(payslip.WithholdingTax)
		netPay = netPay.Add(payslip.NetPay)
	}

	vacationAccrual := grossCash.Mul(vacationAccrualPercent).DivRound(decimal.NewFromInt(100), 2)
	feesOnAccrual := utils.CalculateEmployerFees(vacationAccrual)

	entries := []models.NewLedgerEntry{
		{AccountCode: models.AccountCodeGrossSalary, Description: "Löner och ersättningar", Debit: grossCash.Add(nonTaxable)},
		{AccountCode: models.AccountCodeEmployerFeesCost, Description: "Arbetsgivaravgifter", Debit: employerFees},
		{AccountCode: models.AccountCodeVacationPay, Description: "Semesterlöneskuld förändring", Debit: vacationAccrual},
		{AccountCode: models.AccountCodeFeesOnVacationCost, Description: "Arbetsgivaravgifter semesterlön", Debit: feesOnAccrual},
		{AccountCode: models.AccountCodeEmployeeTax, Description: "Avdragen preliminärskatt", Credit: withholdingTax},
		{AccountCode: models.AccountCodeEmployerFees, Description: "Arbetsgivaravgifter", Credit: employerFees},
		{AccountCode: models.AccountCodeVacationLiability, Description: "Upplupna semesterlöner", Credit: vacationAccrual},
		{AccountCode: models.AccountCodeFeesOnVacation, Description: "Upplupna avgifter semesterlön", Credit: feesOnAccrual},
		{AccountCode: models.AccountCodeBank, Description: "Nettolöner", Credit: netPay},
	}

	// zero-amount rows would fail entry validation
	filtered := entries[:0]
	for _, e := range entries {
		if e.Debit.IsZero() && e.Credit.IsZero() {
			continue
		}
		filtered = append(filtered, e)
	}

	if err := models.ValidateBalanced(filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

// BookPayrollRun writes the payroll verifikation and marks the run booked.
func BookPayrollRun(ctx context.Context, runId int) (*models.PayrollRun, error) {
	logger := config.GetLogger()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	release, err := utils.UserLock(ctx, userId, "PayrollRun", "workflow", "BookPayrollRun")
	if err != nil {
		return nil, err
	}
	defer release()

	run, err := utils.FetchModel[models.PayrollRun](ctx, userId, runId, "Payslips")
	if err != nil {
		return nil, err
	}
	if run.Status == models.PayrollRunStatusBooked {
		return nil, errors.New("payroll run is already booked")
	}

	entries, err := BuildPayrollPostings(run)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	transaction, err := models.CreateLedgerTransactionTx(ctx, tx, userId, &models.NewLedgerTransaction{
		TransactionDate: run.PaymentDate,
		Description:     fmt.Sprintf("Lönekörning %d/%d", run.Month, run.Year),
		ReferenceType:   models.LedgerReferenceTypePayroll,
		ReferenceId:     run.ID,
		Entries:         entries,
	})
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "payrollWorkflow.go", "BookPayrollRun", "CreateLedgerTransactionTx", run.ID, err)
		return nil, err
	}
	err = tx.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"Status":              models.PayrollRunStatusBooked,
		"LedgerTransactionId": transaction.ID,
	}).Error
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "payrollWorkflow.go", "BookPayrollRun", "UpdatePayrollRun", run.ID, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return run, nil
}
