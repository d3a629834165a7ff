package models

import (
	"log"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Account{},
		&Customer{}, &Supplier{},
		&Invoice{}, &InvoiceItem{},
		&LedgerTransaction{}, &LedgerEntry{},
		&Employee{},
		&PayrollRun{}, &Payslip{}, &PayslipExtraRow{},
		&VacationRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
