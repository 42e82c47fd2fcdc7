package models

import "github.com/shopspring/decimal"

// Static reference catalogs. All of these are loaded once from the data
// document and treated as read-only; each entry exposes a human-readable
// Name used for fuzzy lookup in the assistant.

type BankInfo struct {
	Name     string   `json:"name"`
	Tagline  string   `json:"tagline"`
	Address  string   `json:"address"`
	Contact  string   `json:"contact"`
	Email    string   `json:"email"`
	Helpline string   `json:"helpline"`
	Services []string `json:"services"`
	Branches []Branch `json:"branches"`
}

type Branch struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Timings string `json:"timings"`
}

type LoanProduct struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Interest string `json:"interest"`
	Tenure   string `json:"tenure"`
}

type Scheme struct {
	Name        string   `json:"name"`
	Benefits    []string `json:"benefits"`
	Eligibility string   `json:"eligibility"`
	Application string   `json:"application"`
}

type AccountType struct {
	Name         string          `json:"name"`
	MinBalance   decimal.Decimal `json:"min_balance"`
	InterestRate float64         `json:"interest_rate"`
	Documents    string          `json:"documents"`
	Features     string          `json:"features"`
}
