package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
)

// BAS account codes used by the posting generators.
const (
	AccountCodeCustomerReceivable = "1510"
	AccountCodeRotRutReceivable   = "1513"
	AccountCodeTaxAccount         = "1630"
	AccountCodeBank               = "1930"
	AccountCodeSupplierPayable    = "2440"
	AccountCodeOutputVat25        = "2610"
	AccountCodeOutputVat12        = "2620"
	AccountCodeOutputVat6         = "2630"
	AccountCodeEmployeeTax        = "2710"
	AccountCodeEmployerFees       = "2731"
	AccountCodeVacationLiability  = "2920"
	AccountCodeFeesOnVacation     = "2941"
	AccountCodeSalesGoods         = "3001"
	AccountCodeSalesServices      = "3011"
	AccountCodeGrossSalary        = "7210"
	AccountCodeVacationPay        = "7285"
	AccountCodeEmployerFeesCost   = "7510"
	AccountCodeFeesOnVacationCost = "7519"
)

// Account is one row of the user's BAS chart of accounts.
type Account struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"index;not null;uniqueIndex:idx_account_user_code" json:"user_id"`
	Code      string    `gorm:"size:4;not null;uniqueIndex:idx_account_user_code" json:"code" binding:"required"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Class     string    `gorm:"size:50" json:"class"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) GetId() int {
	return a.ID
}

var defaultAccounts = []Account{
	{Code: AccountCodeCustomerReceivable, Name: "Kundfordringar", Class: "Asset"},
	{Code: AccountCodeRotRutReceivable, Name: "Kundfordringar – delad faktura", Class: "Asset"},
	{Code: AccountCodeTaxAccount, Name: "Skattekonto", Class: "Asset"},
	{Code: AccountCodeBank, Name: "Företagskonto", Class: "Asset"},
	{Code: AccountCodeSupplierPayable, Name: "Leverantörsskulder", Class: "Liability"},
	{Code: AccountCodeOutputVat25, Name: "Utgående moms 25%", Class: "Liability"},
	{Code: AccountCodeOutputVat12, Name: "Utgående moms 12%", Class: "Liability"},
	{Code: AccountCodeOutputVat6, Name: "Utgående moms 6%", Class: "Liability"},
	{Code: AccountCodeEmployeeTax, Name: "Personalskatt", Class: "Liability"},
	{Code: AccountCodeEmployerFees, Name: "Avräkning lagstadgade sociala avgifter", Class: "Liability"},
	{Code: AccountCodeVacationLiability, Name: "Upplupna semesterlöner", Class: "Liability"},
	{Code: AccountCodeFeesOnVacation, Name: "Upplupna sociala avgifter semesterlön", Class: "Liability"},
	{Code: AccountCodeSalesGoods, Name: "Försäljning varor", Class: "Income"},
	{Code: AccountCodeSalesServices, Name: "Försäljning tjänster", Class: "Income"},
	{Code: AccountCodeGrossSalary, Name: "Löner till tjänstemän", Class: "Expense"},
	{Code: AccountCodeVacationPay, Name: "Semesterlöner", Class: "Expense"},
	{Code: AccountCodeEmployerFeesCost, Name: "Lagstadgade sociala avgifter", Class: "Expense"},
	{Code: AccountCodeFeesOnVacationCost, Name: "Sociala avgifter semesterlön", Class: "Expense"},
}

// SeedAccountsForUser inserts the default chart of accounts for a user,
// skipping codes that already exist.
func SeedAccountsForUser(ctx context.Context, userId int) (int, error) {
	if userId <= 0 {
		return 0, errors.New("user id is required")
	}
	db := config.GetDB()
	created := 0
	for _, account := range defaultAccounts {
		if err := utils.ValidateUnique[Account](ctx, userId, "code", account.Code, 0); err != nil {
			continue
		}
		account.UserId = userId
		account.IsActive = utils.NewTrue()
		if err := db.WithContext(ctx).Create(&account).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func FetchAccounts(ctx context.Context) ([]*Account, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[Account](ctx, userId)
}

// OutputVatAccountForRate maps a VAT percent to its BAS output-VAT account.
func OutputVatAccountForRate(vatPercent int64) (string, error) {
	switch vatPercent {
	case 25:
		return AccountCodeOutputVat25, nil
	case 12:
		return AccountCodeOutputVat12, nil
	case 6:
		return AccountCodeOutputVat6, nil
	}
	return "", errors.New("unsupported VAT rate")
}
