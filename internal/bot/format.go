package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bank-assistant-go/internal/intent"
	"bank-assistant-go/internal/models"
)

// recentTransactionLimit caps how many entries the chat reply shows; the
// full sequence stays available through the API.
const recentTransactionLimit = 5

// money renders an amount with the locale's digit grouping, e.g. ₹1,234.50.
func (b *Bot) money(amount decimal.Decimal) string {
	return b.printer.Sprintf("₹%.2f", amount.InexactFloat64())
}

// signedMoney prefixes credits with +; debits keep the minus sign.
func (b *Bot) signedMoney(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + b.money(amount)
	}
	return b.money(amount)
}

func (b *Bot) recentTransactions(username string) string {
	txns, err := b.store.Transactions(username)
	if err != nil {
		return msgTryLater
	}
	if len(txns) == 0 {
		return "You don't have any transactions yet."
	}
	if len(txns) > recentTransactionLimit {
		txns = txns[:recentTransactionLimit]
	}

	var sb strings.Builder
	sb.WriteString("Here are your recent transactions:\n")
	for i, txn := range txns {
		fmt.Fprintf(&sb, "\n%d. %s (%s)\n   Amount: %s | Balance: %s\n",
			i+1, txn.Description, txn.Date.Format("2006-01-02"),
			b.signedMoney(txn.Amount), b.money(txn.Balance))
	}
	sb.WriteString("\nSay \"monthly report\" for a full statement.")
	return sb.String()
}

func (b *Bot) bankInfo(msg string) string {
	info := b.store.BankInfo()

	switch {
	case strings.Contains(msg, "branch") || strings.Contains(msg, "location"):
		var sb strings.Builder
		fmt.Fprintf(&sb, "**%s Branches:**\n", info.Name)
		for _, br := range info.Branches {
			fmt.Fprintf(&sb, "\n**%s**\n- Address: %s\n- Timings: %s\n", br.Name, br.Address, br.Timings)
		}
		return sb.String()

	case strings.Contains(msg, "service") || strings.Contains(msg, "product"):
		var sb strings.Builder
		fmt.Fprintf(&sb, "**Services offered by %s:**\n\n", info.Name)
		for _, svc := range info.Services {
			fmt.Fprintf(&sb, "- %s\n", svc)
		}
		return sb.String()

	case strings.Contains(msg, "time") || strings.Contains(msg, "hour"):
		if len(info.Branches) > 0 {
			return fmt.Sprintf("Our branches are open %s.", info.Branches[0].Timings)
		}
	}

	return fmt.Sprintf(
		"**%s** - %s\n\n- Address: %s\n- Contact: %s\n- Email: %s\n- Helpline: %s",
		info.Name, info.Tagline, info.Address, info.Contact, info.Email, info.Helpline)
}

func (b *Bot) loanInfo(msg string) string {
	loans := b.store.LoanProducts()
	if loan, ok := matchCatalog(msg, loans, func(l models.LoanProduct) string { return l.Name }); ok {
		return b.formatLoan(loan)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Loan Products at %s:**\n", b.store.BankInfo().Name)
	for _, k := range sortedKeys(loans) {
		l := loans[k]
		fmt.Fprintf(&sb, "\n**%s**\n- Amount: %s\n- Interest Rate: %s\n- Tenure: %s\n",
			l.Name, l.Amount, l.Interest, l.Tenure)
	}
	sb.WriteString("\nAsk about a specific loan for details!")
	return sb.String()
}

func (b *Bot) formatLoan(l models.LoanProduct) string {
	return fmt.Sprintf(
		"**%s**\n- Amount: %s\n- Interest Rate: %s\n- Tenure: %s\n\nVisit any %s branch to apply!",
		l.Name, l.Amount, l.Interest, l.Tenure, b.store.BankInfo().Name)
}

func (b *Bot) schemeInfo(msg string) string {
	schemes := b.store.GovernmentSchemes()
	if scheme, ok := matchCatalog(msg, schemes, func(s models.Scheme) string { return s.Name }); ok {
		return b.formatScheme(scheme)
	}

	var sb strings.Builder
	sb.WriteString("**Government Schemes available:**\n")
	for _, k := range sortedKeys(schemes) {
		fmt.Fprintf(&sb, "\n- %s", schemes[k].Name)
	}
	sb.WriteString("\n\nAsk about a specific scheme for eligibility and benefits!")
	return sb.String()
}

func (b *Bot) formatScheme(s models.Scheme) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n**Benefits:**\n", s.Name)
	for _, benefit := range s.Benefits {
		fmt.Fprintf(&sb, "- %s\n", benefit)
	}
	fmt.Fprintf(&sb, "\n**Eligibility:** %s\n**How to apply:** %s", s.Eligibility, s.Application)
	return sb.String()
}

func (b *Bot) accountInfo(msg string) string {
	if strings.Contains(msg, "create") || strings.Contains(msg, "open") || strings.Contains(msg, "new account") {
		return b.accountCreationInfo()
	}

	types := b.store.AccountTypes()
	if at, ok := matchCatalog(msg, types, func(a models.AccountType) string { return a.Name }); ok {
		return b.formatAccountType(at)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Account Types at %s:**\n", b.store.BankInfo().Name)
	for _, k := range sortedKeys(types) {
		a := types[k]
		fmt.Fprintf(&sb, "\n**%s**\n- Minimum Balance: %s\n- Interest Rate: %.2f%%\n",
			a.Name, b.money(a.MinBalance), a.InterestRate)
	}
	sb.WriteString("\nAsk about a specific account type for details!")
	return sb.String()
}

func (b *Bot) formatAccountType(a models.AccountType) string {
	return fmt.Sprintf(
		"**%s**\n- Minimum Balance: %s\n- Interest Rate: %.2f%%\n- Documents: %s\n- Features: %s",
		a.Name, b.money(a.MinBalance), a.InterestRate, a.Documents, a.Features)
}

func (b *Bot) accountCreationInfo() string {
	return fmt.Sprintf(
		"**Account Opening Process at %s:**\n\n"+
			"To open a new account, please keep these ready:\n\n"+
			"1. Aadhar card copy or any other government ID proof\n"+
			"2. Passport size photo\n"+
			"3. Minimum deposit amount of %s\n\n"+
			"Contact our nearest branch, or use the dashboard to submit an application.",
		b.store.BankInfo().Name, b.money(decimal.NewFromInt(500)))
}

// matchCatalog resolves a message against a catalog by display name:
// substring containment first, then fuzzy similarity. Keys are walked in
// sorted order so ties resolve the same way every time.
func matchCatalog[T any](msg string, catalog map[string]T, name func(T) string) (T, bool) {
	keys := sortedKeys(catalog)

	for _, k := range keys {
		if strings.Contains(msg, strings.ToLower(name(catalog[k]))) {
			return catalog[k], true
		}
	}

	names := make([]string, 0, len(keys))
	byName := make(map[string]T, len(keys))
	for _, k := range keys {
		lower := strings.ToLower(name(catalog[k]))
		names = append(names, lower)
		byName[lower] = catalog[k]
	}
	if best, ok := intent.ClosestMatch(msg, names, intent.DefaultCutoff); ok {
		return byName[best], true
	}

	var zero T
	return zero, false
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
