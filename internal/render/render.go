// Package render turns a finished report into a download reference. PDF
// layout is an external concern; the core only needs something it can hand
// back to the user as a link.
package render

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"bank-assistant-go/internal/models"
	"bank-assistant-go/internal/report"
)

// Renderer produces a download reference for a generated report.
type Renderer interface {
	Render(acct models.Account, rep report.Report) (string, error)
}

// StatementRenderer writes a plain-text statement and returns it as a
// base64 data URL, the same delivery shape the dashboard uses for PDFs.
type StatementRenderer struct {
	BankName string
}

func (r *StatementRenderer) Render(acct models.Account, rep report.Report) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - Monthly Statement Report\n", r.BankName)
	fmt.Fprintf(&b, "Generated on: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Account Holder: %s\n", acct.Name)
	fmt.Fprintf(&b, "Account Number: %s\n", acct.AccountNumber)
	fmt.Fprintf(&b, "Account Type: %s\n", acct.AccountType)
	fmt.Fprintf(&b, "Report Period: %s to %s\n\n",
		rep.StartDate.Format("2006-01-02"), rep.EndDate.Format("2006-01-02"))

	fmt.Fprintf(&b, "Total Transactions: %d\n", rep.TotalTransactions)
	fmt.Fprintf(&b, "Total Credit: %s\n", rep.TotalCredit.StringFixed(2))
	fmt.Fprintf(&b, "Total Debit: %s\n", rep.TotalDebit.StringFixed(2))
	fmt.Fprintf(&b, "Net Change: %s\n\n", rep.NetChange.StringFixed(2))

	for _, txn := range rep.Transactions {
		fmt.Fprintf(&b, "%s  %-30s  %10s  %12s\n",
			txn.Date.Format("2006-01-02"), txn.Description,
			txn.Amount.StringFixed(2), txn.Balance.StringFixed(2))
	}
	b.WriteString("\nNote: This is an automatically generated statement.\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(b.String()))
	return "data:text/plain;base64," + encoded, nil
}
