package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer account as stored in the bank data document.
// The document keys accounts by username; Username is filled at load time
// and never serialized back.
type Account struct {
	Username      string          `json:"-"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	PasswordHash  string          `json:"password"`
}

// Transaction is one ledger entry. Amount is signed: credits positive,
// debits negative. Balance is the account balance right after the entry
// was applied.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// HistoryTemplate is a seed entry used to synthesize an account's initial
// transaction history. New transactions are appended here too so the
// document round-trips them.
type HistoryTemplate struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amt"`
}
