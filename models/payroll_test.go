package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testEmployee() *Employee {
	return &Employee{
		ID:                1,
		Name:              "Anna Andersson",
		MonthlySalary:     d("30000"),
		TaxTablePercent:   d("20"),
		EmploymentPercent: d("100"),
	}
}

func TestBuildPayslip(t *testing.T) {
	payslip, err := buildPayslip(testEmployee(), &NewPayslip{EmployeeId: 1}, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payslip.GrossPay.Equal(d("30000")) {
		t.Errorf("gross pay = %s, want 30000", payslip.GrossPay)
	}
	if !payslip.TaxBase.Equal(d("30000")) {
		t.Errorf("tax base = %s, want 30000", payslip.TaxBase)
	}
	if !payslip.WithholdingTax.Equal(d("6000")) {
		t.Errorf("withholding tax = %s, want 6000", payslip.WithholdingTax)
	}
	if !payslip.EmployerFees.Equal(d("9426")) {
		t.Errorf("employer fees = %s, want 9426", payslip.EmployerFees)
	}
	if !payslip.NetPay.Equal(d("24000")) {
		t.Errorf("net pay = %s, want 24000", payslip.NetPay)
	}
	if !payslip.VacationDaysAccrued.Equal(d("2.08")) {
		t.Errorf("vacation days accrued = %s, want 2.08", payslip.VacationDaysAccrued)
	}
	if payslip.Month != 3 || payslip.Year != 2024 {
		t.Errorf("period = %d/%d, want 3/2024", payslip.Month, payslip.Year)
	}
}

func TestBuildPayslipGrossOverride(t *testing.T) {
	override := d("20000")
	payslip, err := buildPayslip(testEmployee(), &NewPayslip{EmployeeId: 1, GrossOverride: &override}, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payslip.GrossPay.Equal(d("20000")) {
		t.Errorf("gross pay = %s, want 20000", payslip.GrossPay)
	}
	if !payslip.WithholdingTax.Equal(d("4000")) {
		t.Errorf("withholding tax = %s, want 4000", payslip.WithholdingTax)
	}

	negative := d("-1")
	if _, err := buildPayslip(testEmployee(), &NewPayslip{EmployeeId: 1, GrossOverride: &negative}, 3, 2024); err == nil {
		t.Fatal("expected an error for negative override")
	}
}

func TestBuildPayslipExtraRows(t *testing.T) {
	payslip, err := buildPayslip(testEmployee(), &NewPayslip{
		EmployeeId: 1,
		ExtraRows: []NewPayslipExtraRow{
			{Description: "Övertid", RowType: ExtraRowTypeTaxable, Amount: d("2000")},
			{Description: "Milersättning", RowType: ExtraRowTypeNonTaxable, Amount: d("500")},
			{Description: "Tjänstebil", RowType: ExtraRowTypeCarBenefit, Amount: d("4000")},
		},
	}, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cash pay: 30000 + 2000; benefits only raise the tax base
	if !payslip.GrossPay.Equal(d("32000")) {
		t.Errorf("gross pay = %s, want 32000", payslip.GrossPay)
	}
	if !payslip.BenefitsAmount.Equal(d("4000")) {
		t.Errorf("benefits = %s, want 4000", payslip.BenefitsAmount)
	}
	if !payslip.TaxBase.Equal(d("36000")) {
		t.Errorf("tax base = %s, want 36000", payslip.TaxBase)
	}
	if !payslip.WithholdingTax.Equal(d("7200")) {
		t.Errorf("withholding tax = %s, want 7200", payslip.WithholdingTax)
	}
	// 36000 * 31.42%
	if !payslip.EmployerFees.Equal(d("11311.2")) {
		t.Errorf("employer fees = %s, want 11311.2", payslip.EmployerFees)
	}
	// 32000 cash + 500 non-taxable - 7200 tax
	if !payslip.NetPay.Equal(d("25300")) {
		t.Errorf("net pay = %s, want 25300", payslip.NetPay)
	}
	if len(payslip.ExtraRows) != 3 {
		t.Errorf("extra rows = %d, want 3", len(payslip.ExtraRows))
	}
}

func TestBuildPayslipVacationPay(t *testing.T) {
	payslip, err := buildPayslip(testEmployee(), &NewPayslip{EmployeeId: 1, VacationPay: d("1440")}, 7, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payslip.GrossPay.Equal(d("31440")) {
		t.Errorf("gross pay = %s, want 31440", payslip.GrossPay)
	}
	if !payslip.VacationPay.Equal(d("1440")) {
		t.Errorf("vacation pay = %s, want 1440", payslip.VacationPay)
	}
}

func TestBuildPayslipRejectsNegativeRows(t *testing.T) {
	_, err := buildPayslip(testEmployee(), &NewPayslip{
		EmployeeId: 1,
		ExtraRows:  []NewPayslipExtraRow{{Description: "x", RowType: ExtraRowTypeTaxable, Amount: d("-100")}},
	}, 3, 2024)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, err := buildPayslip(testEmployee(), &NewPayslip{EmployeeId: 1, VacationPay: d("-1")}, 3, 2024); err == nil {
		t.Fatal("expected an error")
	}
}

func TestBuildPayslipPartTimeAccrual(t *testing.T) {
	employee := testEmployee()
	employee.EmploymentPercent = d("50")
	payslip, err := buildPayslip(employee, &NewPayslip{EmployeeId: 1}, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payslip.VacationDaysAccrued.Equal(d("1.04")) {
		t.Errorf("vacation days accrued = %s, want 1.04", payslip.VacationDaysAccrued)
	}
}

func TestDuplicateEmployeeIdInRun(t *testing.T) {
	payslips := []NewPayslip{{EmployeeId: 1}, {EmployeeId: 2}, {EmployeeId: 1}}
	id, dup := duplicateEmployeeId(payslips)
	if !dup {
		t.Fatal("expected the duplicate employee to be detected")
	}
	if id != 1 {
		t.Errorf("duplicate employee id = %d, want 1", id)
	}

	if _, dup := duplicateEmployeeId([]NewPayslip{{EmployeeId: 1}, {EmployeeId: 2}}); dup {
		t.Error("distinct employees must not be flagged")
	}
	if _, dup := duplicateEmployeeId(nil); dup {
		t.Error("empty input must not be flagged")
	}
}

func TestEnsureNoStoredPayslip(t *testing.T) {
	ctx := context.Background()
	employee := testEmployee()

	none := func(ctx context.Context, employeeId int, month int, year int) (int64, error) {
		return 0, nil
	}
	if err := ensureNoStoredPayslip(ctx, employee, 3, 2024, none); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	one := func(ctx context.Context, employeeId int, month int, year int) (int64, error) {
		if employeeId != employee.ID || month != 3 || year != 2024 {
			t.Errorf("looked up employee %d period %d/%d, want %d period 3/2024", employeeId, month, year, employee.ID)
		}
		return 1, nil
	}
	err := ensureNoStoredPayslip(ctx, employee, 3, 2024, one)
	if err == nil {
		t.Fatal("expected an error when a payslip already exists for the period")
	}
	if !strings.Contains(err.Error(), employee.Name) {
		t.Errorf("error %q does not name the employee", err)
	}

	broken := func(ctx context.Context, employeeId int, month int, year int) (int64, error) {
		return 0, errors.New("count failed")
	}
	if err := ensureNoStoredPayslip(ctx, employee, 3, 2024, broken); err == nil || err.Error() != "count failed" {
		t.Errorf("lookup error not propagated, got %v", err)
	}
}

func TestValidatePeriod(t *testing.T) {
	tests := []struct {
		name    string
		month   int
		year    int
		wantErr bool
	}{
		{name: "valid", month: 6, year: 2024},
		{name: "month too low", month: 0, year: 2024, wantErr: true},
		{name: "month too high", month: 13, year: 2024, wantErr: true},
		{name: "year too low", month: 6, year: 1999, wantErr: true},
		{name: "year too high", month: 6, year: 2101, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePeriod(tt.month, tt.year)
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithholdingTaxRoundsToWholeKronor(t *testing.T) {
	employee := testEmployee()
	employee.MonthlySalary = d("30001")
	employee.TaxTablePercent = decimal.NewFromFloat(20.5)
	payslip, err := buildPayslip(employee, &NewPayslip{EmployeeId: 1}, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 30001 * 20.5% = 6150.205, rounded to whole kronor
	if !payslip.WithholdingTax.Equal(d("6150")) {
		t.Errorf("withholding tax = %s, want 6150", payslip.WithholdingTax)
	}
}
