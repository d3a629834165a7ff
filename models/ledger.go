package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerReferenceType string

const (
	LedgerReferenceTypeManual         LedgerReferenceType = "Manual"
	LedgerReferenceTypeInvoice        LedgerReferenceType = "Invoice"
	LedgerReferenceTypeInvoicePayment LedgerReferenceType = "InvoicePayment"
	LedgerReferenceTypePayroll        LedgerReferenceType = "Payroll"
	LedgerReferenceTypeTaxRemittance  LedgerReferenceType = "TaxRemittance"
)

// balanceTolerance is the maximum allowed |sum(debit) - sum(credit)| per
// transaction. Anything above it aborts the write.
var balanceTolerance = decimal.NewFromFloat(0.01)

var ErrorUnbalancedTransaction = errors.New("transaction debits and credits do not balance")

// LedgerTransaction is one verifikation: a group of balanced postings.
type LedgerTransaction struct {
	ID                 int                 `gorm:"primary_key" json:"id"`
	UserId             int                 `gorm:"index;not null" json:"user_id"`
	SequenceNo         decimal.Decimal     `gorm:"type:decimal(15);not null" json:"sequence_no"`
	VerificationNumber string              `gorm:"size:255;not null" json:"verification_number"`
	TransactionDate    time.Time           `gorm:"not null" json:"transaction_date" binding:"required"`
	Description        string              `gorm:"size:255" json:"description"`
	ReferenceType      LedgerReferenceType `gorm:"type:enum('Manual','Invoice','InvoicePayment','Payroll','TaxRemittance');default:'Manual'" json:"reference_type"`
	ReferenceId        int                 `gorm:"index" json:"reference_id"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Entries            []LedgerEntry       `gorm:"foreignKey:LedgerTransactionId" json:"entries"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type LedgerEntry struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	LedgerTransactionId int             `gorm:"index;not null" json:"ledger_transaction_id"`
	AccountCode         string          `gorm:"size:4;index;not null" json:"account_code" binding:"required"`
	Description         string          `gorm:"size:255" json:"description"`
	Debit               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
}

type NewLedgerTransaction struct {
	TransactionDate time.Time           `json:"transaction_date" binding:"required"`
	Description     string              `json:"description"`
	ReferenceType   LedgerReferenceType `json:"reference_type"`
	ReferenceId     int                 `json:"reference_id"`
	Entries         []NewLedgerEntry    `json:"entries" binding:"required"`
}

type NewLedgerEntry struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type LedgerTransactionsConnection struct {
	Edges    []*LedgerTransactionsEdge `json:"edges"`
	PageInfo *PageInfo                 `json:"pageInfo"`
}

type LedgerTransactionsEdge struct {
	Cursor string             `json:"cursor"`
	Node   *LedgerTransaction `json:"node"`
}

func (t *LedgerTransaction) GetId() int {
	return t.ID
}

func (e LedgerEntry) GetId() int {
	return e.ID
}

// ValidateBalanced checks the double-entry invariant over a set of entries:
// every entry carries a debit or a credit, and the sums agree within the
// tolerance. Violations are returned, never corrected.
func ValidateBalanced(entries []NewLedgerEntry) error {
	if len(entries) == 0 {
		return errors.New("at least one entry is required")
	}
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range entries {
		if e.Debit.IsZero() && e.Credit.IsZero() {
			return errors.New("either debit or credit must have value")
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return errors.New("debit and credit must not be negative")
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balanceTolerance) {
		return fmt.Errorf("%w: debit %s, credit %s", ErrorUnbalancedTransaction, totalDebit, totalCredit)
	}
	return nil
}

func receiveLedgerEntries(input *NewLedgerTransaction, transactionId int) ([]LedgerEntry, decimal.Decimal, error) {
	if err := ValidateBalanced(input.Entries); err != nil {
		return nil, decimal.Zero, err
	}
	entries := make([]LedgerEntry, 0, len(input.Entries))
	totalAmount := decimal.Zero
	for _, e := range input.Entries {
		totalAmount = totalAmount.Add(e.Debit)
		entries = append(entries, LedgerEntry{
			LedgerTransactionId: transactionId,
			AccountCode:         e.AccountCode,
			Description:         e.Description,
			Debit:               e.Debit,
			Credit:              e.Credit,
		})
	}
	return entries, totalAmount, nil
}

// validate entry accounts against the user's chart of accounts
func validateEntryAccounts(ctx context.Context, userId int, entries []NewLedgerEntry) error {
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, e.AccountCode)
	}
	codes = utils.UniqueSlice(codes)
	count, err := utils.ResourceCountWhere[Account](ctx, userId, "code IN ?", codes)
	if err != nil {
		return err
	}
	if count != int64(len(codes)) {
		return errors.New("unknown account code")
	}
	return nil
}

// CreateLedgerTransactionTx writes a verifikation inside the caller's db
// transaction. The balance invariant is enforced here, right before the
// insert, so no caller can slip an unbalanced posting set past it.
func CreateLedgerTransactionTx(ctx context.Context, tx *gorm.DB, userId int, input *NewLedgerTransaction) (*LedgerTransaction, error) {
	if userId <= 0 {
		return nil, errors.New("user id is required")
	}
	entries, totalAmount, err := receiveLedgerEntries(input, 0)
	if err != nil {
		return nil, err
	}
	if err := validateEntryAccounts(ctx, userId, input.Entries); err != nil {
		return nil, err
	}

	referenceType := input.ReferenceType
	if referenceType == "" {
		referenceType = LedgerReferenceTypeManual
	}

	seqNo, err := utils.GetSequence[LedgerTransaction](ctx, userId)
	if err != nil {
		return nil, err
	}

	transaction := LedgerTransaction{
		UserId:             userId,
		SequenceNo:         decimal.NewFromInt(seqNo),
		VerificationNumber: "V" + fmt.Sprint(seqNo),
		TransactionDate:    input.TransactionDate,
		Description:        input.Description,
		ReferenceType:      referenceType,
		ReferenceId:        input.ReferenceId,
		TotalAmount:        totalAmount,
		Entries:            entries,
	}
	if err := tx.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// CreateLedgerTransaction records a manual verifikation (user-entered journal).
func CreateLedgerTransaction(ctx context.Context, input *NewLedgerTransaction) (*LedgerTransaction, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if input.ReferenceType != "" && input.ReferenceType != LedgerReferenceTypeManual {
		return nil, errors.New("reference type is set by the system")
	}
	input.ReferenceType = LedgerReferenceTypeManual

	db := config.GetDB()
	tx := db.Begin()
	transaction, err := CreateLedgerTransactionTx(ctx, tx, userId, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteLedgerTransactionTx removes a verifikation and its entries inside the
// caller's db transaction.
func DeleteLedgerTransactionTx(ctx context.Context, tx *gorm.DB, userId int, id int) error {
	var transaction LedgerTransaction
	if err := tx.WithContext(ctx).Where("user_id = ?", userId).First(&transaction, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := tx.WithContext(ctx).Where("ledger_transaction_id = ?", id).Delete(&LedgerEntry{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&transaction).Error; err != nil {
		return err
	}
	return nil
}

func DeleteLedgerTransaction(ctx context.Context, id int) (*LedgerTransaction, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	transaction, err := utils.FetchModel[LedgerTransaction](ctx, userId, id, "Entries")
	if err != nil {
		return nil, err
	}
	if transaction.ReferenceType != LedgerReferenceTypeManual {
		return nil, errors.New("system-generated transactions are removed with their source document")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := DeleteLedgerTransactionTx(ctx, tx, userId, id); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

func GetLedgerTransaction(ctx context.Context, id int) (*LedgerTransaction, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[LedgerTransaction](ctx, userId, id, "Entries")
}

func PaginateLedgerTransactions(ctx context.Context, limit *int, after *string, fromDate *time.Time, toDate *time.Time) (*LedgerTransactionsConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*LedgerTransactionsEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Entries").Where("user_id = ?", userId)
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("transaction_date BETWEEN ? AND ?", fromDate, toDate)
	}

	var results []*LedgerTransaction
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
			edges[count] = &LedgerTransactionsEdge{
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

	connection := LedgerTransactionsConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
