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

// VacationRecord is one semester entry for an employee: days accrued by a
// payslip, taken, saved from an earlier year, advanced, or paid out.
type VacationRecord struct {
	ID         int               `gorm:"primary_key" json:"id"`
	UserId     int               `gorm:"index;not null" json:"user_id"`
	EmployeeId int               `gorm:"index;not null" json:"employee_id" binding:"required"`
	PayslipId  int               `gorm:"index" json:"payslip_id"`
	EntryType  VacationEntryType `gorm:"type:enum('Accrued','Used','Saved','Advance','Paid');not null" json:"entry_type" binding:"required"`
	Days       decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"days" binding:"required"`
	Year       int               `gorm:"not null" json:"year"`
	EntryDate  time.Time         `gorm:"not null" json:"entry_date"`
	Note       string            `gorm:"size:255" json:"note"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

type NewVacationRecord struct {
	EmployeeId int               `json:"employee_id" binding:"required"`
	EntryType  VacationEntryType `json:"entry_type" binding:"required"`
	Days       decimal.Decimal   `json:"days" binding:"required"`
	EntryDate  time.Time         `json:"entry_date" binding:"required"`
	Note       string            `json:"note"`
}

// VacationBalance summarizes an employee's day counts per entry type.
type VacationBalance struct {
	EmployeeId int             `json:"employee_id"`
	Accrued    decimal.Decimal `json:"accrued"`
	Used       decimal.Decimal `json:"used"`
	Saved      decimal.Decimal `json:"saved"`
	Advance    decimal.Decimal `json:"advance"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
}

func (r VacationRecord) GetId() int {
	return r.ID
}

// CreateVacationRecord adds a manual semester entry. Accrued entries come
// only from payroll runs.
func CreateVacationRecord(ctx context.Context, input *NewVacationRecord) (*VacationRecord, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.EntryType.Valid(); err != nil {
		return nil, err
	}
	if input.EntryType == VacationEntryTypeAccrued {
		return nil, errors.New("accrued days are recorded by payroll runs")
	}
	if input.Days.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("days must be positive")
	}
	if err := utils.ValidateResourceId[Employee](ctx, userId, input.EmployeeId); err != nil {
		return nil, err
	}

	record := VacationRecord{
		UserId:     userId,
		EmployeeId: input.EmployeeId,
		EntryType:  input.EntryType,
		Days:       input.Days,
		Year:       input.EntryDate.Year(),
		EntryDate:  input.EntryDate,
		Note:       input.Note,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func DeleteVacationRecord(ctx context.Context, id int) (*VacationRecord, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	record, err := utils.FetchModel[VacationRecord](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if record.PayslipId != 0 {
		return nil, errors.New("payroll-generated entries are removed with their payroll run")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func FetchVacationRecords(ctx context.Context, employeeId int) ([]*VacationRecord, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Employee](ctx, userId, employeeId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var records []*VacationRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND employee_id = ?", userId, employeeId).
		Order("entry_date DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetVacationBalance sums the employee's entries into a current balance:
// accrued + saved + advance - used - paid.
func GetVacationBalance(ctx context.Context, employeeId int) (*VacationBalance, error) {
	records, err := FetchVacationRecords(ctx, employeeId)
	if err != nil {
		return nil, err
	}

	balance := VacationBalance{EmployeeId: employeeId}
	for _, record := range records {
		switch record.EntryType {
		case VacationEntryTypeAccrued:
			balance.Accrued = balance.Accrued.Add(record.Days)
		case VacationEntryTypeUsed:
			balance.Used = balance.Used.Add(record.Days)
		case VacationEntryTypeSaved:
			balance.Saved = balance.Saved.Add(record.Days)
		case VacationEntryTypeAdvance:
			balance.Advance = balance.Advance.Add(record.Days)
		case VacationEntryTypePaid:
			balance.Paid = balance.Paid.Add(record.Days)
		}
	}
	balance.Remaining = balance.Accrued.Add(balance.Saved).Add(balance.Advance).
		Sub(balance.Used).Sub(balance.Paid)
	return &balance, nil
}

// RolloverVacationYear converts each employee's unused accrued days from the
// given year into a Saved entry dated 1 April of the following year, the
// start of the Swedish vacation year.
func RolloverVacationYear(ctx context.Context, year int) (int, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return 0, errors.New("user id is required")
	}

	release, err := utils.UserLock(ctx, userId, "VacationRollover", "models", "RolloverVacationYear")
	if err != nil {
		return 0, err
	}
	defer release()

	employees, err := FetchActiveEmployees(ctx, userId)
	if err != nil {
		return 0, err
	}

	db := config.GetDB()
	rolloverDate := time.Date(year+1, time.April, 1, 0, 0, 0, 0, time.UTC)
	rolled := 0

	tx := db.Begin()
	for _, employee := range employees {
		var records []*VacationRecord
		err := tx.WithContext(ctx).
			Where("user_id = ? AND employee_id = ? AND year = ?", userId, employee.ID, year).
			Find(&records).Error
		if err != nil {
			tx.Rollback()
			return 0, err
		}

		unused := decimal.Zero
		for _, record := range records {
			switch record.EntryType {
			case VacationEntryTypeAccrued:
				unused = unused.Add(record.Days)
			case VacationEntryTypeUsed, VacationEntryTypePaid:
				unused = unused.Sub(record.Days)
			}
		}
		var alreadyRolled int64
		err = tx.WithContext(ctx).Model(&VacationRecord{}).
			Where("user_id = ? AND employee_id = ? AND note = ?", userId, employee.ID, rolloverNote(year)).
			Count(&alreadyRolled).Error
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if alreadyRolled > 0 || unused.LessThanOrEqual(decimal.Zero) {
			continue
		}

		saved := VacationRecord{
			UserId:     userId,
			EmployeeId: employee.ID,
			EntryType:  VacationEntryTypeSaved,
			Days:       unused,
			Year:       year + 1,
			EntryDate:  rolloverDate,
			Note:       rolloverNote(year),
		}
		if err := tx.WithContext(ctx).Create(&saved).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
		rolled++
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return rolled, nil
}

func rolloverNote(year int) string {
	return fmt.Sprintf("Sparade dagar från %d", year)
}
