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

// PayrollRun is one lönekörning: the payslips of every included employee for
// one period, booked into the ledger as a single verifikation.
type PayrollRun struct {
	ID                  int              `gorm:"primary_key" json:"id"`
	UserId              int              `gorm:"index;not null" json:"user_id"`
	Month               int              `gorm:"not null" json:"month" binding:"required"`
	Year                int              `gorm:"not null" json:"year" binding:"required"`
	PaymentDate         time.Time        `gorm:"not null" json:"payment_date" binding:"required"`
	Status              PayrollRunStatus `gorm:"type:enum('Draft','Booked');default:'Draft'" json:"status"`
	TotalGross          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_gross"`
	TotalEmployerFees   decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_employer_fees"`
	TotalWithholdingTax decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_withholding_tax"`
	TotalNet            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_net"`
	TotalVacationPay    decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_vacation_pay"`
	LedgerTransactionId int              `gorm:"index" json:"ledger_transaction_id"`
	Payslips            []Payslip        `gorm:"foreignKey:PayrollRunId" json:"payslips"`
	CreatedAt           time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type Payslip struct {
	ID                  int               `gorm:"primary_key" json:"id"`
	PayrollRunId        int               `gorm:"index;not null" json:"payroll_run_id"`
	EmployeeId          int               `gorm:"index;not null" json:"employee_id" binding:"required"`
	Employee            *Employee         `json:"employee"`
	Month               int               `gorm:"not null" json:"month"`
	Year                int               `gorm:"not null" json:"year"`
	GrossPay            decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"gross_pay"`
	BenefitsAmount      decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"benefits_amount"`
	NonTaxableAmount    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"non_taxable_amount"`
	TaxBase             decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"tax_base"`
	WithholdingTax      decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"withholding_tax"`
	EmployerFees        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"employer_fees"`
	NetPay              decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"net_pay"`
	VacationPay         decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"vacation_pay"`
	VacationDaysAccrued decimal.Decimal   `gorm:"type:decimal(10,2);default:0" json:"vacation_days_accrued"`
	ExtraRows           []PayslipExtraRow `gorm:"foreignKey:PayslipId" json:"extra_rows"`
}

// PayslipExtraRow adjusts a payslip: taxable extras, non-taxable expenses,
// or benefits in kind (benefits raise the tax and fee bases but not cash pay).
type PayslipExtraRow struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PayslipId   int             `gorm:"index;not null" json:"payslip_id"`
	Description string          `gorm:"size:255;not null" json:"description" binding:"required"`
	RowType     ExtraRowType    `gorm:"type:enum('Taxable','NonTaxable','Benefit','CarBenefit');default:'Taxable'" json:"row_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount" binding:"required"`
}

type NewPayrollRun struct {
	Month       int          `json:"month" binding:"required"`
	Year        int          `json:"year" binding:"required"`
	PaymentDate time.Time    `json:"payment_date" binding:"required"`
	Payslips    []NewPayslip `json:"payslips" binding:"required"`
}

type NewPayslip struct {
	EmployeeId    int                  `json:"employee_id" binding:"required"`
	GrossOverride *decimal.Decimal     `json:"gross_override"`
	VacationPay   decimal.Decimal      `json:"vacation_pay"`
	ExtraRows     []NewPayslipExtraRow `json:"extra_rows"`
}

type NewPayslipExtraRow struct {
	Description string          `json:"description" binding:"required"`
	RowType     ExtraRowType    `json:"row_type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

type PayrollRunsConnection struct {
	Edges    []*PayrollRunsEdge `json:"edges"`
	PageInfo *PageInfo          `json:"pageInfo"`
}

type PayrollRunsEdge struct {
	Cursor string      `json:"cursor"`
	Node   *PayrollRun `json:"node"`
}

func (r *PayrollRun) GetId() int {
	return r.ID
}

func (p Payslip) GetId() int {
	return p.ID
}

func validatePeriod(month int, year int) error {
	if month < 1 || month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return errors.New("invalid year")
	}
	return nil
}

// duplicateEmployeeId reports the first employee appearing more than once in
// the run's input. One payslip per employee and period.
func duplicateEmployeeId(payslips []NewPayslip) (int, bool) {
	seen := map[int]bool{}
	for _, payslip := range payslips {
		if seen[payslip.EmployeeId] {
			return payslip.EmployeeId, true
		}
		seen[payslip.EmployeeId] = true
	}
	return 0, false
}

// payslipCount reports how many payslips are already stored for an employee
// and period.
type payslipCount func(ctx context.Context, employeeId int, month int, year int) (int64, error)

func storedPayslipCount(ctx context.Context, employeeId int, month int, year int) (int64, error) {
	return utils.ResourceCountWhere[Payslip](ctx, 0,
		"employee_id = ? AND month = ? AND year = ?", employeeId, month, year)
}

// ensureNoStoredPayslip rejects a payslip when one already exists for the
// employee and period, in any run.
func ensureNoStoredPayslip(ctx context.Context, employee *Employee, month int, year int, count payslipCount) error {
	existing, err := count(ctx, employee.ID, month, year)
	if err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("payslip for %s already exists for %d/%d", employee.Name, month, year)
	}
	return nil
}

// buildPayslip derives one payslip from the employee's salary data and the
// run's extra rows. Benefits enter the tax and employer-fee bases without
// raising cash pay; non-taxable rows are paid out untaxed.
func buildPayslip(employee *Employee, input *NewPayslip, month int, year int) (*Payslip, error) {
	gross := employee.MonthlySalary
	if input.GrossOverride != nil {
		if input.GrossOverride.IsNegative() {
			return nil, errors.New("gross pay must not be negative")
		}
		gross = *input.GrossOverride
	}

	taxableExtra := decimal.Zero
	nonTaxable := decimal.Zero
	benefits := decimal.Zero
	extraRows := make([]PayslipExtraRow, 0, len(input.ExtraRows))
	for _, row := range input.ExtraRows {
		if err := row.RowType.Valid(); err != nil {
			return nil, err
		}
		if row.Amount.IsNegative() {
			return nil, errors.New("extra row amount must not be negative")
		}
		switch row.RowType {
		case ExtraRowTypeTaxable:
			taxableExtra = taxableExtra.Add(row.Amount)
		case ExtraRowTypeNonTaxable:
			nonTaxable = nonTaxable.Add(row.Amount)
		case ExtraRowTypeBenefit, ExtraRowTypeCarBenefit:
			benefits = benefits.Add(row.Amount)
		}
		extraRows = append(extraRows, PayslipExtraRow{
			Description: row.Description,
			RowType:     row.RowType,
			Amount:      row.Amount,
		})
	}

	if input.VacationPay.IsNegative() {
		return nil, errors.New("vacation pay must not be negative")
	}

	grossCash := gross.Add(taxableExtra).Add(input.VacationPay)
	taxBase := grossCash.Add(benefits)
	withholdingTax := utils.CalculateWithholdingTax(taxBase, employee.TaxTablePercent)
	employerFees := utils.CalculateEmployerFees(taxBase)
	netPay := grossCash.Add(nonTaxable).Sub(withholdingTax)

	payslip := Payslip{
		EmployeeId:          employee.ID,
		Month:               month,
		Year:                year,
		GrossPay:            grossCash,
		BenefitsAmount:      benefits,
		NonTaxableAmount:    nonTaxable,
		TaxBase:             taxBase,
		WithholdingTax:      withholdingTax,
		EmployerFees:        employerFees,
		NetPay:              netPay,
		VacationPay:         input.VacationPay,
		VacationDaysAccrued: utils.MonthlyVacationAccrual(employee.EmploymentPercent),
		ExtraRows:           extraRows,
	}
	return &payslip, nil
}

// CreatePayrollRun assembles the payslips for one period. A payslip for the
// same employee and period must not already exist, in this run or any other.
func CreatePayrollRun(ctx context.Context, input *NewPayrollRun) (*PayrollRun, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := validatePeriod(input.Month, input.Year); err != nil {
		return nil, err
	}
	if len(input.Payslips) == 0 {
		return nil, errors.New("at least one payslip is required")
	}

	release, err := utils.UserLock(ctx, userId, "PayrollRun", "models", "CreatePayrollRun")
	if err != nil {
		return nil, err
	}
	defer release()

	run := PayrollRun{
		UserId:      userId,
		Month:       input.Month,
		Year:        input.Year,
		PaymentDate: input.PaymentDate,
		Status:      PayrollRunStatusDraft,
	}

	if employeeId, dup := duplicateEmployeeId(input.Payslips); dup {
		return nil, fmt.Errorf("duplicate payslip for employee %d", employeeId)
	}

	payslips := make([]Payslip, 0, len(input.Payslips))
	for idx := range input.Payslips {
		payslipInput := &input.Payslips[idx]

		employee, err := utils.FetchModel[Employee](ctx, userId, payslipInput.EmployeeId)
		if err != nil {
			return nil, err
		}
		if err := ensureNoStoredPayslip(ctx, employee, input.Month, input.Year, storedPayslipCount); err != nil {
			return nil, err
		}

		payslip, err := buildPayslip(employee, payslipInput, input.Month, input.Year)
		if err != nil {
			return nil, err
		}
		run.TotalGross = run.TotalGross.Add(payslip.GrossPay).Add(payslip.BenefitsAmount)
		run.TotalEmployerFees = run.TotalEmployerFees.Add(payslip.EmployerFees)
		run.TotalWithholdingTax = run.TotalWithholdingTax.Add(payslip.WithholdingTax)
		run.TotalNet = run.TotalNet.Add(payslip.NetPay)
		run.TotalVacationPay = run.TotalVacationPay.Add(payslip.VacationPay)
		payslips = append(payslips, *payslip)
	}
	run.Payslips = payslips

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&run).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// vacation is earned in the period the payslip covers
	for _, payslip := range run.Payslips {
		record := VacationRecord{
			UserId:     userId,
			EmployeeId: payslip.EmployeeId,
			PayslipId:  payslip.ID,
			EntryType:  VacationEntryTypeAccrued,
			Days:       payslip.VacationDaysAccrued,
			Year:       input.Year,
			EntryDate:  input.PaymentDate,
			Note:       fmt.Sprintf("Intjänade semesterdagar %d/%d", input.Month, input.Year),
		}
		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// DeletePayrollRun removes a draft run with its payslips, extra rows, and
// vacation accruals. Booked runs stay; their verifikation is already in the
// ledger.
func DeletePayrollRun(ctx context.Context, id int) (*PayrollRun, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	run, err := utils.FetchModel[PayrollRun](ctx, userId, id, "Payslips")
	if err != nil {
		return nil, err
	}
	if run.Status == PayrollRunStatusBooked {
		return nil, errors.New("booked payroll runs cannot be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	for _, payslip := range run.Payslips {
		if err := tx.WithContext(ctx).Where("payslip_id = ?", payslip.ID).Delete(&PayslipExtraRow{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.WithContext(ctx).Where("payslip_id = ?", payslip.ID).Delete(&VacationRecord{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Where("payroll_run_id = ?", id).Delete(&Payslip{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(run).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return run, nil
}

func GetPayrollRun(ctx context.Context, id int) (*PayrollRun, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	db := config.GetDB()
	var run PayrollRun
	err := db.WithContext(ctx).
		Preload("Payslips.ExtraRows").Preload("Payslips.Employee").
		Where("user_id = ?", userId).First(&run, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &run, nil
}

func PaginatePayrollRuns(ctx context.Context, limit *int, after *string, year *int) (*PayrollRunsConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*PayrollRunsEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Payslips").Where("user_id = ?", userId)
	if year != nil && *year > 0 {
		dbCtx = dbCtx.Where("year = ?", *year)
	}

	var results []*PayrollRun
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
			edges[count] = &PayrollRunsEdge{
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

	connection := PayrollRunsConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
