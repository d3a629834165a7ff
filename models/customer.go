package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
)

type Customer struct {
	ID           int       `gorm:"primary_key" json:"id"`
	UserId       int       `gorm:"index;not null" json:"user_id"`
	Name         string    `gorm:"size:255;not null" json:"name" binding:"required"`
	OrgNumber    string    `gorm:"size:20" json:"org_number"`
	PersonNumber string    `gorm:"size:20" json:"person_number"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Address      string    `gorm:"size:255" json:"address"`
	PostalCode   string    `gorm:"size:10" json:"postal_code"`
	City         string    `gorm:"size:100" json:"city"`
	Reference    string    `gorm:"size:100" json:"reference"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name         string `json:"name" binding:"required"`
	OrgNumber    string `json:"org_number"`
	PersonNumber string `json:"person_number"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	Reference    string `json:"reference"`
}

type CustomersConnection struct {
	Edges    []*CustomersEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

type CustomersEdge struct {
	Cursor string    `json:"cursor"`
	Node   *Customer `json:"node"`
}

func (c *Customer) GetId() int {
	return c.ID
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCustomer) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Customer](ctx, userId, "name", input.Name, id); err != nil {
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
	if input.OrgNumber != "" {
		if err := utils.ValidateOrgOrPersonNumber(input.OrgNumber); err != nil {
			return err
		}
	}
	// ROT/RUT claims are filed against the buyer's personnummer
	if input.PersonNumber != "" {
		if err := utils.ValidateOrgOrPersonNumber(input.PersonNumber); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		UserId:       userId,
		Name:         input.Name,
		OrgNumber:    input.OrgNumber,
		PersonNumber: input.PersonNumber,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		PostalCode:   input.PostalCode,
		City:         input.City,
		Reference:    input.Reference,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":         input.Name,
		"OrgNumber":    input.OrgNumber,
		"PersonNumber": input.PersonNumber,
		"Email":        input.Email,
		"Phone":        input.Phone,
		"Address":      input.Address,
		"PostalCode":   input.PostalCode,
		"City":         input.City,
		"Reference":    input.Reference,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	// customers referenced by invoices must not disappear under them
	count, err := utils.ResourceCountWhere[Invoice](ctx, userId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("customer has invoices and cannot be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Customer](ctx, userId, id)
}

func PaginateCustomers(ctx context.Context, limit *int, after *string, name *string) (*CustomersConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*CustomersEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Customer
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
			edges[count] = &CustomersEdge{
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

	connection := CustomersConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
