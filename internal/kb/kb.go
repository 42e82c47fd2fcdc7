// Package kb loads and validates the bank data document: customer accounts,
// static catalogs, canned bot responses and the account request queue. The
// document is read once at startup and rewritten wholesale by the store on
// every mutating ledger operation.
package kb

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"bank-assistant-go/internal/models"
)

//go:embed schemas/bankdata.schema.json
var schemaText string

// Configuration failures are fatal at startup; callers are expected to check
// with errors.Is and halt.
var (
	ErrMissingKey = errors.New("missing required key")
	ErrBadFormat  = errors.New("malformed data document")
)

// RequiredKeys are the top-level keys every data document must carry.
// account_requests is absent from older documents and defaults to empty.
var RequiredKeys = []string{
	"users", "bank_info", "loan_products", "government_schemes",
	"transactions_history", "bills", "spending_categories", "bot_responses",
	"account_info",
}

// Document is the full bank data document.
type Document struct {
	Users               map[string]*models.Account    `json:"users"`
	BankInfo            models.BankInfo               `json:"bank_info"`
	LoanProducts        map[string]models.LoanProduct `json:"loan_products"`
	GovernmentSchemes   map[string]models.Scheme      `json:"government_schemes"`
	TransactionsHistory []models.HistoryTemplate      `json:"transactions_history"`
	Bills               []models.Bill                 `json:"bills"`
	SpendingCategories  []models.SpendingCategory     `json:"spending_categories"`
	BotResponses        map[string][]string           `json:"bot_responses"`
	AccountInfo         map[string]models.AccountType `json:"account_info"`
	AccountRequests     []models.AccountRequest       `json:"account_requests"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data document: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw JSON against the embedded schema, checks the required
// top-level keys and fills catalog defaults once, so call sites never have
// to default-fill on read.
func Parse(raw []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	for _, key := range RequiredKeys {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaText),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrBadFormat, strings.Join(details, "; "))
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	doc.fillDefaults()
	return &doc, nil
}

// fillDefaults normalizes loaded records so the rest of the system can rely
// on every field being present.
func (d *Document) fillDefaults() {
	for username, acct := range d.Users {
		acct.Username = username
	}
	for key, at := range d.AccountInfo {
		if at.Name == "" {
			at.Name = titleCase(strings.ReplaceAll(key, "_", " "))
		}
		if at.Documents == "" {
			at.Documents = "Not specified"
		}
		if at.Features == "" {
			at.Features = "No special features"
		}
		d.AccountInfo[key] = at
	}
	if d.AccountRequests == nil {
		d.AccountRequests = []models.AccountRequest{}
	}
	if d.BotResponses == nil {
		d.BotResponses = map[string][]string{}
	}
}

// Marshal renders the document back to the JSON shape it was loaded from.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
