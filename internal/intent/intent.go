// Package intent maps free-text messages to one of a fixed set of service
// intents. Matching is keyword-first with word boundaries, then falls back
// to closest-match similarity against the whole keyword table.
package intent

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Intent is a recognized user goal.
type Intent string

const (
	BalanceInquiry     Intent = "balance_inquiry"
	TransactionHistory Intent = "transaction_history"
	FundTransfer       Intent = "fund_transfer"
	BillPayment        Intent = "bill_payment"
	BankInfo           Intent = "bank_info"
	LoanInfo           Intent = "loan_info"
	SchemeInfo         Intent = "scheme_info"
	AccountInfo        Intent = "account_info"
	MonthlyReport      Intent = "monthly_report"
)

// Category pairs an intent with its trigger phrases. Slice order is the
// match priority: when a message hits keywords of several categories, the
// first declared category wins. That ordering is part of the classifier
// contract, which is why this is a slice and not a map.
type Category struct {
	Intent   Intent
	Keywords []string
}

// DefaultCutoff is the minimum similarity ratio for an approximate keyword
// match to be accepted.
const DefaultCutoff = 0.6

// DefaultCategories is the stock keyword table. It is data: callers may pass
// their own table to NewClassifier.
var DefaultCategories = []Category{
	{BalanceInquiry, []string{
		"balance", "account balance", "how much money", "check balance",
		"current balance", "what do i have", "funds available", "available balance",
		"remaining balance", "account summary",
	}},
	{TransactionHistory, []string{
		"transaction", "history", "statement", "recent transactions",
		"last transactions", "past payments", "my spending", "past expenses",
		"payment history", "transaction details", "transaction summary",
	}},
	{FundTransfer, []string{
		"transfer", "send money", "transfer money", "transfer funds",
		"move money", "pay someone", "send to friend", "wire transfer",
		"remit", "send cash",
	}},
	{BillPayment, []string{
		"pay bill", "bill payment", "utility bill", "electricity bill",
		"water bill", "gas bill", "phone bill", "internet bill",
		"credit card bill", "mobile recharge",
	}},
	{BankInfo, []string{
		"about cgbank", "bank information", "bank details", "what is cgbank",
		"bank services", "products offered", "bank features", "branch locations",
		"contact bank", "bank timings",
	}},
	{LoanInfo, []string{
		"loan", "borrow", "credit", "home loan", "personal loan", "car loan",
		"education loan", "interest rates", "eligibility", "how to apply",
		"mortgage", "vehicle loan", "student loan",
	}},
	{SchemeInfo, []string{
		"modi scheme", "pm farmer scheme", "thangamagal scheme", "government scheme",
		"scheme details", "scheme information", "subsidy", "farmer benefits",
		"women benefits", "agricultural scheme",
	}},
	{AccountInfo, []string{
		"account", "account type", "student account", "nri account", "senior account",
		"how to open new acc", "account types", "new account", "create account",
		"open account", "account opening", "how to create account",
	}},
	{MonthlyReport, []string{
		"monthly report", "monthly statement", "monthly summary",
		"monthly transactions", "monthly spending", "monthly analysis",
		"account statement", "report for month", "statement for month",
	}},
}

// Classifier is a pure, deterministic text-to-intent matcher.
type Classifier struct {
	categories []Category
	patterns   [][]*regexp.Regexp
	cutoff     float64
}

// NewClassifier compiles word-boundary patterns for every keyword in the
// table, preserving declaration order.
func NewClassifier(categories []Category) *Classifier {
	c := &Classifier{categories: categories, cutoff: DefaultCutoff}
	for _, cat := range categories {
		compiled := make([]*regexp.Regexp, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			compiled = append(compiled, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		c.patterns = append(c.patterns, compiled)
	}
	return c
}

// Classify returns the intent for text, or false when nothing matches even
// approximately. Given identical input and table, the result is always
// identical.
func (c *Classifier) Classify(text string) (Intent, bool) {
	msg := Normalize(text)
	if msg == "" {
		return "", false
	}

	for i, compiled := range c.patterns {
		for _, re := range compiled {
			if re.MatchString(msg) {
				return c.categories[i].Intent, true
			}
		}
	}

	// No exact hit: compare the whole message against every keyword and
	// take the single closest one above the cutoff.
	best := -1.0
	var owner Intent
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if r := Ratio(msg, kw); r >= c.cutoff && r > best {
				best = r
				owner = cat.Intent
			}
		}
	}
	if best >= 0 {
		return owner, true
	}
	return "", false
}

// Normalize lowercases and trims input the same way for every matcher.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Ratio is the similarity of two strings on a 0-1 scale, computed the
// difflib way over characters.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// ClosestMatch returns the candidate most similar to query, provided the
// similarity reaches cutoff. Ties keep the earlier candidate so the result
// is stable for a fixed candidate order.
func ClosestMatch(query string, candidates []string, cutoff float64) (string, bool) {
	best := -1.0
	match := ""
	for _, cand := range candidates {
		if r := Ratio(query, cand); r >= cutoff && r > best {
			best = r
			match = cand
		}
	}
	return match, best >= 0
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
