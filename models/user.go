package models

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID                int               `gorm:"primary_key" json:"id"`
	Email             string            `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Name              string            `gorm:"size:100;not null" json:"name" binding:"required"`
	Password          string            `gorm:"size:255;not null" json:"-"`
	CompanyName       string            `gorm:"size:255" json:"company_name"`
	OrgNumber         string            `gorm:"size:20" json:"org_number"`
	BookkeepingMethod BookkeepingMethod `gorm:"type:enum('Fakturametoden','Kontantmetoden');default:'Fakturametoden'" json:"bookkeeping_method"`
	VatPeriod         VatPeriod         `gorm:"type:enum('Monthly','Quarterly','Yearly');default:'Quarterly'" json:"vat_period"`
	Address           string            `gorm:"size:255" json:"address"`
	PostalCode        string            `gorm:"size:10" json:"postal_code"`
	City              string            `gorm:"size:100" json:"city"`
	Phone             string            `gorm:"size:20" json:"phone"`
	Bankgiro          string            `gorm:"size:20" json:"bankgiro"`
	IsActive          *bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Email       string `json:"email" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CompanyName string `json:"company_name"`
	OrgNumber   string `json:"org_number"`
}

type UpdateUserProfileInput struct {
	Name              string            `json:"name" binding:"required"`
	CompanyName       string            `json:"company_name"`
	OrgNumber         string            `json:"org_number"`
	BookkeepingMethod BookkeepingMethod `json:"bookkeeping_method" binding:"required"`
	VatPeriod         VatPeriod         `json:"vat_period"`
	Address           string            `json:"address"`
	PostalCode        string            `json:"postal_code"`
	City              string            `json:"city"`
	Phone             string            `json:"phone"`
	Bankgiro          string            `json:"bankgiro"`
}

type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (u *User) GetId() int {
	return u.ID
}

func userCacheKey(email string) string {
	return "User:" + strings.ToLower(email)
}

func Register(ctx context.Context, input *NewUser) (*User, error) {
	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if input.OrgNumber != "" {
		if err := utils.ValidateOrgOrPersonNumber(input.OrgNumber); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:             strings.ToLower(input.Email),
		Name:              input.Name,
		Password:          string(hashed),
		CompanyName:       input.CompanyName,
		OrgNumber:         input.OrgNumber,
		BookkeepingMethod: BookkeepingMethodInvoice,
		IsActive:          utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateEntryError(err) {
			return nil, errors.New("email already registered")
		}
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, email string, password string) (*AuthPayload, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).Take(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("invalid email or password")
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	// cache for the auth middleware, expiring with the token
	tokenLifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		tokenLifespan = 24
	}
	if err := config.SetRedisObject(userCacheKey(user.Email), &user, time.Duration(tokenLifespan)*time.Hour); err != nil {
		return nil, err
	}

	return &AuthPayload{Token: token, User: &user}, nil
}

// GetUserByEmail reads the user from redis or db (auth middleware path).
func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject(userCacheKey(email), &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", strings.ToLower(email)).Take(&user).Error; err != nil {
			return nil, err
		}
		if err := config.SetRedisObject(userCacheKey(user.Email), &user, time.Hour); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func GetUserProfile(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchSingleModel[User](ctx, userId)
}

func UpdateUserProfile(ctx context.Context, input *UpdateUserProfileInput) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.BookkeepingMethod.Valid(); err != nil {
		return nil, err
	}
	if input.VatPeriod == "" {
		input.VatPeriod = VatPeriodQuarterly
	}
	if err := input.VatPeriod.Valid(); err != nil {
		return nil, err
	}
	if input.OrgNumber != "" {
		if err := utils.ValidateOrgOrPersonNumber(input.OrgNumber); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, errors.New("invalid phone number")
		}
	}

	user, err := utils.FetchSingleModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"Name":              input.Name,
		"CompanyName":       input.CompanyName,
		"OrgNumber":         input.OrgNumber,
		"BookkeepingMethod": input.BookkeepingMethod,
		"VatPeriod":         input.VatPeriod,
		"Address":           input.Address,
		"PostalCode":        input.PostalCode,
		"City":              input.City,
		"Phone":             input.Phone,
		"Bankgiro":          input.Bankgiro,
	}).Error
	if err != nil {
		return nil, err
	}
	// stale cache would keep serving the old profile to the middleware
	if err := config.RemoveRedisKey(userCacheKey(user.Email)); err != nil {
		return nil, err
	}
	return user, nil
}
