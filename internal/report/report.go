// Package report aggregates an account's transactions over a date window.
// It never mutates the ledger; the result is handed to a document renderer.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"bank-assistant-go/internal/models"
)

// Report is the aggregation over [StartDate, EndDate], inclusive.
type Report struct {
	StartDate         time.Time            `json:"start_date"`
	EndDate           time.Time            `json:"end_date"`
	TotalTransactions int                  `json:"total_transactions"`
	TotalCredit       decimal.Decimal      `json:"total_credit"`
	TotalDebit        decimal.Decimal      `json:"total_debit"`
	NetChange         decimal.Decimal      `json:"net_change"`
	Transactions      []models.Transaction `json:"transactions"`
}

// Build filters transactions to the window and sums credits and debits.
// TotalDebit is the absolute value of the debit sum, so
// NetChange = TotalCredit - TotalDebit.
func Build(transactions []models.Transaction, start, end time.Time) Report {
	rep := Report{
		StartDate:   start,
		EndDate:     end,
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for _, txn := range transactions {
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		rep.Transactions = append(rep.Transactions, txn)
		rep.TotalTransactions++
		if txn.Amount.IsPositive() {
			rep.TotalCredit = rep.TotalCredit.Add(txn.Amount)
		} else {
			rep.TotalDebit = rep.TotalDebit.Add(txn.Amount.Abs())
		}
	}
	rep.NetChange = rep.TotalCredit.Sub(rep.TotalDebit)
	return rep
}
