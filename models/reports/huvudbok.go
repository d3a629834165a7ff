package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// HuvudbokRow is one account's totals over the report period.
type HuvudbokRow struct {
	AccountCode  string          `json:"account_code"`
	AccountName  string          `json:"account_name"`
	AccountClass string          `json:"account_class"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Balance      decimal.Decimal `json:"balance"`
}

// GetHuvudbokReport sums debit, credit, and balance per account over a date
// range. Asset and expense accounts balance debit-minus-credit, the rest
// credit-minus-debit.
func GetHuvudbokReport(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*HuvudbokRow, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	query := `
        SELECT
            acc.code AS account_code,
            acc.name AS account_name,
            acc.class AS account_class,
            COALESCE(SUM(le.debit), 0) AS debit,
            COALESCE(SUM(le.credit), 0) AS credit,
            (CASE WHEN acc.class IN ('Asset', 'Expense')
            THEN COALESCE(SUM(le.debit), 0) - COALESCE(SUM(le.credit), 0)
            ELSE COALESCE(SUM(le.credit), 0) - COALESCE(SUM(le.debit), 0) END) AS balance
        FROM
            accounts AS acc
        LEFT JOIN
            ledger_entries AS le ON le.account_code = acc.code
            AND le.ledger_transaction_id IN (
                SELECT id FROM ledger_transactions
                WHERE user_id = ? AND transaction_date BETWEEN ? AND ?
            )
        WHERE
            acc.user_id = ?
        GROUP BY
            acc.id, acc.code, acc.name, acc.class
        ORDER BY
            acc.code ASC`

	var rows []*HuvudbokRow
	db := config.GetDB()
	err := db.WithContext(ctx).Raw(query, userId, fromDate, toDate, userId).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportHuvudbokExcel renders the huvudbok rows as an xlsx workbook.
func ExportHuvudbokExcel(rows []*HuvudbokRow, fromDate time.Time, toDate time.Time) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Huvudbok"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// Add headers
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Huvudbok %s – %s",
		fromDate.Format("2006-01-02"), toDate.Format("2006-01-02")))
	f.SetCellValue(sheetName, "A2", "Konto")
	f.SetCellValue(sheetName, "B2", "Benämning")
	f.SetCellValue(sheetName, "C2", "Debet")
	f.SetCellValue(sheetName, "D2", "Kredit")
	f.SetCellValue(sheetName, "E2", "Saldo")

	// Add data
	for i, row := range rows {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(i+3), row.AccountCode)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(i+3), row.AccountName)
		f.SetCellValue(sheetName, "C"+fmt.Sprint(i+3), row.Debit.InexactFloat64())
		f.SetCellValue(sheetName, "D"+fmt.Sprint(i+3), row.Credit.InexactFloat64())
		f.SetCellValue(sheetName, "E"+fmt.Sprint(i+3), row.Balance.InexactFloat64())
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
