package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
)

type Supplier struct {
	ID         int       `gorm:"primary_key" json:"id"`
	UserId     int       `gorm:"index;not null" json:"user_id"`
	Name       string    `gorm:"size:255;not null" json:"name" binding:"required"`
	OrgNumber  string    `gorm:"size:20" json:"org_number"`
	Email      string    `gorm:"size:100" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Address    string    `gorm:"size:255" json:"address"`
	PostalCode string    `gorm:"size:10" json:"postal_code"`
	City       string    `gorm:"size:100" json:"city"`
	Bankgiro   string    `gorm:"size:20" json:"bankgiro"`
	Plusgiro   string    `gorm:"size:20" json:"plusgiro"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name       string `json:"name" binding:"required"`
	OrgNumber  string `json:"org_number"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Bankgiro   string `json:"bankgiro"`
	Plusgiro   string `json:"plusgiro"`
}

type SuppliersConnection struct {
	Edges    []*SuppliersEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

type SuppliersEdge struct {
	Cursor string    `json:"cursor"`
	Node   *Supplier `json:"node"`
}

func (s *Supplier) GetId() int {
	return s.ID
}

func (input *NewSupplier) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Supplier](ctx, userId, "name", input.Name, id); err != nil {
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
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		UserId:     userId,
		Name:       input.Name,
		OrgNumber:  input.OrgNumber,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		PostalCode: input.PostalCode,
		City:       input.City,
		Bankgiro:   input.Bankgiro,
		Plusgiro:   input.Plusgiro,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
		"Name":       input.Name,
		"OrgNumber":  input.OrgNumber,
		"Email":      input.Email,
		"Phone":      input.Phone,
		"Address":    input.Address,
		"PostalCode": input.PostalCode,
		"City":       input.City,
		"Bankgiro":   input.Bankgiro,
		"Plusgiro":   input.Plusgiro,
	}).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	supplier, err := utils.FetchModel[Supplier](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Supplier](ctx, userId, id)
}

func PaginateSuppliers(ctx context.Context, limit *int, after *string, name *string) (*SuppliersConnection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	decodedCursor, _ := DecodeCursor(after)
	edges := make([]*SuppliersEdge, *limit)
	count := 0
	hasNextPage := false

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Supplier
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
			edges[count] = &SuppliersEdge{
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

	connection := SuppliersConnection{
		Edges:    edges[:count],
		PageInfo: &pageInfo,
	}
	return &connection, nil
}
