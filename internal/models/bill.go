package models

import "github.com/shopspring/decimal"

// Bill statuses as they appear in the data document.
const (
	BillStatusUpcoming = "Upcoming"
	BillStatusDueSoon  = "Due Soon"
)

// Bill is a pending bill. Paid bills are removed from the document's bills
// collection.
type Bill struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Due    string          `json:"due"`
	Status string          `json:"status"`
}

// SpendingCategory is a read-only slice of the dashboard spending chart data.
type SpendingCategory struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}
