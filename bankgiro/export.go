// Package bankgiro writes Leverantörsbetalningar payment files: fixed-width
// 80-character records, one 01 opening record, a 35 record per payment, and
// an 09 total record whose sum and count must match the body.
package bankgiro

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const recordLength = 80

// Payment targets either a bankgiro number (supplier payments) or a clearing
// number plus bank account (salary payments).
type Payment struct {
	Bankgiro       string          `json:"bankgiro"`
	ClearingNumber string          `json:"clearing_number"`
	BankAccount    string          `json:"bank_account"`
	Reference      string          `json:"reference"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate    time.Time       `json:"payment_date" binding:"required"`
}

type File struct {
	BatchId string `json:"batch_id"`
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

func digitsOnly(number string) (string, error) {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(number)
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid account number %q", number)
		}
	}
	return cleaned, nil
}

func normalizeBankgiro(number string) (string, error) {
	cleaned, err := digitsOnly(number)
	if err != nil {
		return "", err
	}
	if len(cleaned) < 7 || len(cleaned) > 10 {
		return "", fmt.Errorf("invalid bankgiro number %q", number)
	}
	return cleaned, nil
}

// receiverField renders the 16-digit receiver column: a bankgiro number
// right-aligned, or clearing (5) + account (11) for bank account payments.
func (p Payment) receiverField() (string, error) {
	if p.Bankgiro != "" {
		bankgiro, err := normalizeBankgiro(p.Bankgiro)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%016s", bankgiro), nil
	}
	clearing, err := digitsOnly(p.ClearingNumber)
	if err != nil {
		return "", err
	}
	account, err := digitsOnly(p.BankAccount)
	if err != nil {
		return "", err
	}
	if len(clearing) < 4 || len(clearing) > 5 {
		return "", fmt.Errorf("invalid clearing number %q", p.ClearingNumber)
	}
	if len(account) == 0 || len(account) > 11 {
		return "", fmt.Errorf("invalid bank account %q", p.BankAccount)
	}
	return fmt.Sprintf("%05s%011s", clearing, account), nil
}

// amountInOre converts kronor to öre, rounding to the whole öre the format
// requires.
func amountInOre(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func padRight(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padRecord(s string) string {
	return padRight(s, recordLength)
}

// GeneratePaymentFile renders one payment batch. Every payment amount must
// be positive; the trailer carries the öre sum and record count.
func GeneratePaymentFile(senderBankgiro string, payments []Payment, created time.Time) (*File, error) {
	if len(payments) == 0 {
		return nil, errors.New("at least one payment is required")
	}
	sender, err := normalizeBankgiro(senderBankgiro)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	writeRecord := func(record string) {
		b.WriteString(padRecord(record))
		b.WriteString("\r\n")
	}

	// 01: opening record with write date, layout name, sender bankgiro
	writeRecord(fmt.Sprintf("01%s%sLEVERANTORSBETALNINGAR%s",
		created.Format("060102"),
		strings.Repeat(" ", 12),
		fmt.Sprintf("%010s", sender)))

	totalOre := int64(0)
	for _, payment := range payments {
		if payment.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("payment amount must be positive")
		}
		receiver, err := payment.receiverField()
		if err != nil {
			return nil, err
		}
		ore := amountInOre(payment.Amount)
		totalOre += ore

		// 35: payment record — receiver, reference, amount in öre, pay date
		writeRecord(fmt.Sprintf("35%s%s%012d%s",
			receiver,
			padRight(payment.Reference, 25),
			ore,
			payment.PaymentDate.Format("060102")))
	}

	// 09: total record — sum and count must match the 35 records above
	writeRecord(fmt.Sprintf("09%s%s%012d%08d",
		created.Format("060102"),
		fmt.Sprintf("%010s", sender),
		totalOre,
		len(payments)))

	batchId := uuid.NewString()
	return &File{
		BatchId: batchId,
		Name:    fmt.Sprintf("LB_%s.txt", created.Format("20060102")),
		Content: b.Bytes(),
	}, nil
}
