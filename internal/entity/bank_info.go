package entity

import "time"

type BankInfo struct {
	ID            int64     `json:"id"`
	BankName      *string   `json:"bank_name"`
	AccountNumber *string   `json:"account_number"`
	AccountName   *string   `json:"account_name"`
	CreatedAt     time.Time `json:"created_at"`
}
