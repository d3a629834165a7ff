package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                int             `gorm:"primary_key" json:"id"`
	UserId            int             `gorm:"index;not null" json:"user_id"`
	Name              string          `gorm:"size:255;not null" json:"name" binding:"required"`
	PersonNumber      string          `gorm:"size:20;not null" json:"person_number" binding:"required"`
	Email             string          `gorm:"size:100" json:"email"`
	Phone             string          `gorm:"size:20" json:"phone"`
	Address           string          `gorm:"size:255" json:"address"`
	PostalCode        string          `gorm:"size:10" json:"postal_code"`
	City              string          `gorm:"size:100" json:"city"`
	MonthlySalary     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"monthly_salary" binding:"required"`
	TaxTablePercent   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_table_percent" binding:"required"`
	EmploymentPercent decimal.Decimal `gorm:"type:decimal(5,2);default:100" json:"employment_percent"`
	ClearingNumber    string          `gorm:"size:10" json:"clearing_number"`
	BankAccount       string          `gorm:"size:20" json:"bank_account"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEmployee struct {
	Name              string          `json:"name" binding:"required"`
	PersonNumber      string          `json:"person_number" binding:"required"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	PostalCode        string          `json:"postal_code"`
	City              string          `json:"city"`
	MonthlySalary     decimal.Decimal `json:"monthly_salary" binding:"required"`
	TaxTablePercent   decimal.Decimal `json:"tax_table_percent" binding:"required"`
	EmploymentPercent decimal.Decimal `json:"employment_percent"`
	ClearingNumber    string          `json:"clearing_number"`
	BankAccount       string          `json:"bank_account"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	IsActive          *bool           `json:"is_active"`
}

type EmployeesConnection struct {
	Edges    []*EmployeesEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

type EmployeesEdge struct {
	Cursor string    `json:"cursor"`
	Node   *Employee `json:"node"`
}

func (e *Employee) GetId() int {
	return e.ID
}

func (input *NewEmployee) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateOrgOrPersonNumber(input.PersonNumber); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Employee](ctx, userId, "person_number", input.PersonNumber, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.MonthlySalary.IsNegative() {
		return errors.New("monthly salary must not be negative")
	}
	if input.TaxTablePercent.IsNegative() || input.TaxTablePercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("tax table percent must be between 0 and 100")
	}
	if !input.EmploymentPercent.IsZero() &&
		(input.EmploymentPercent.IsNegative() || input.EmploymentPercent.GreaterThan(decimal.NewFromInt(100))) {
		return errors.New("employment percent must be between 0 and 100")
	}
	if input.EndDate != nil && !input.StartDate.IsZero() && input.EndDate.Before(input.StartDate) {
		return errors.New("end date must not be before start date")
	}
	return nil
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	employmentPercent := input.EmploymentPercent
	if employmentPercent.IsZero() {
		employmentPercent = decimal.NewFromInt(100)
	}
	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	employee := Employee{
		UserId:            userId,
		Name:              input.Name,
		PersonNumber:      input.PersonNumber,
		Email:             input.Email,
		Phone:             input.Phone,
		Address:           input.Address,
		PostalCode:        input.PostalCode,
		City:              input.City,
		MonthlySalary:     input.MonthlySalary,
		TaxTablePercent:   input.TaxTablePercent,
		EmploymentPercent: employmentPercent,
		ClearingNumber:    input.ClearingNumber,
		BankAccount:       input.BankAccount,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		IsActive:          isActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func UpdateEmployee(ctx context.Context, id int, input *NewEmployee) (*Employee, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	employee, err := utils.FetchModel[Employee](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	employmentPercent := input.EmploymentPercent
	if employmentPercent.IsZero() {
		employmentPercent = decimal.NewFromInt(100)
	}
	isActive := input.IsActive
	if isActive == nil {
		isActive = employee.IsActive
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(employee).Updates(map[string]interface{}{
		"Name":              input.Name,
		"PersonNumber":      input.PersonNumber,
		"Email":             input.Email,
		"Phone":             input.Phone,
		"Address":           input.Address,
		"PostalCode":        input.PostalCode,
		"City":              input.City,
		"MonthlySalary":     input.MonthlySalary,
		"TaxTablePercent":   input.TaxTablePercent,
		"EmploymentPercent": employmentPercent,
		"ClearingNumber":    input.ClearingNumber,
		"BankAccount":       input.BankAccount,
		"StartDate":         input.StartDate,
		"EndDate":           input.EndDate,
		"IsActive":          isActive,
	}).Error
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// DeleteEmployee deactivates employees with payroll history instead of
// removing them, so booked payslips keep their subject.
func DeleteEmployee(ctx context.Context, id int) (*Employee, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	employee, err := utils.FetchModel[Employee](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Payslip](ctx, 0, "employee_id = ?", id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if count > 0 {
		err = db.WithContext(ctx).Model(employee).Update("IsActive", utils.NewFalse()).Error
	} else {
		err = db.WithContext(ctx).Delete(employee).Error
	}
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Employee](ctx, userId, id)
}

func FetchActiveEmployees(ctx context.Context, userId int) ([]*Employee, error) {
	db := config.GetDB()
	var employees []*Employee
	err := db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userId, true).
		Order("name ASC").Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func PaginateEmployees(ctx context.Context, limit *int, after *string, name *string) (*EmployeesConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*EmployeesEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Employee
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
			edges[count] = &EmployeesEdge{
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

	connection := EmployeesConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
