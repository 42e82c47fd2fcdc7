package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bank-assistant-go/internal/kb"
	"bank-assistant-go/internal/models"
)

func testHash(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(hash)
}

func testDoc(t *testing.T) *kb.Document {
	t.Helper()
	return &kb.Document{
		Users: map[string]*models.Account{
			"Ragul": {
				Username:      "Ragul",
				Name:          "Ragul",
				AccountNumber: "CG100",
				AccountType:   "Savings Account",
				Balance:       decimal.RequireFromString("5000"),
				PasswordHash:  testHash(t, "secret123"),
			},
		},
		TransactionsHistory: []models.HistoryTemplate{
			{Name: "Salary Credit", Amount: decimal.RequireFromString("45000")},
			{Name: "Grocery Store", Amount: decimal.RequireFromString("-2350.50")},
			{Name: "Fuel Station", Amount: decimal.RequireFromString("-1800")},
		},
		Bills: []models.Bill{
			{Name: "Electricity Bill", Amount: decimal.RequireFromString("1240"), Due: "2026-09-05", Status: models.BillStatusDueSoon},
			{Name: "Water Bill", Amount: decimal.RequireFromString("380"), Due: "2026-09-12", Status: models.BillStatusUpcoming},
		},
		BankInfo:           models.BankInfo{Name: "CGBank"},
		LoanProducts:       map[string]models.LoanProduct{},
		GovernmentSchemes:  map[string]models.Scheme{},
		SpendingCategories: []models.SpendingCategory{},
		AccountInfo:        map[string]models.AccountType{},
		BotResponses:       map[string][]string{},
		AccountRequests:    []models.AccountRequest{},
	}
}

type failingPersister struct{}

func (failingPersister) Save(*kb.Document) error { return errors.New("disk full") }

func TestGetAccountCaseInsensitive(t *testing.T) {
	s := New(testDoc(t), nil)

	for _, username := range []string{"Ragul", "ragul", "RAGUL"} {
		acct, err := s.GetAccount(username)
		if err != nil {
			t.Errorf("GetAccount(%q): %v", username, err)
			continue
		}
		if acct.Name != "Ragul" {
			t.Errorf("GetAccount(%q).Name = %q", username, acct.Name)
		}
	}

	if _, err := s.GetAccount("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetAccount(nobody): err = %v, want ErrUserNotFound", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	s := New(testDoc(t), nil)

	if !s.VerifyCredentials("ragul", "secret123") {
		t.Error("VerifyCredentials with correct password = false")
	}
	if s.VerifyCredentials("ragul", "wrong") {
		t.Error("VerifyCredentials with wrong password = true")
	}
	if s.VerifyCredentials("nobody", "secret123") {
		t.Error("VerifyCredentials for unknown user = true")
	}
}

func TestAuthenticate(t *testing.T) {
	s := New(testDoc(t), nil)

	acct, err := s.Authenticate("RAGUL", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if acct.Name != "Ragul" {
		t.Errorf("Name = %q", acct.Name)
	}

	if _, err := s.Authenticate("ragul", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestBalanceSumsAppliedAmounts(t *testing.T) {
	s := New(testDoc(t), nil)

	amounts := []string{"1200", "-300.25", "-5000000", "99.75", "-1000"}
	applied := decimal.Zero
	for _, a := range amounts {
		amt := decimal.RequireFromString(a)
		if _, err := s.AppendTransaction("ragul", "Adjustment", amt); err == nil {
			applied = applied.Add(amt)
		}
	}

	acct, _ := s.GetAccount("ragul")
	want := decimal.RequireFromString("5000").Add(applied)
	if !acct.Balance.Equal(want) {
		t.Errorf("balance = %s, want initial plus applied amounts %s", acct.Balance, want)
	}

	txns, _ := s.Transactions("ragul")
	if !txns[0].Balance.Equal(acct.Balance) {
		t.Errorf("newest snapshot %s != current balance %s", txns[0].Balance, acct.Balance)
	}
}

func TestTransactionsSynthesized(t *testing.T) {
	s := New(testDoc(t), nil, WithSeed(42))

	txns, err := s.Transactions("ragul")
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 3 {
		t.Fatalf("len(txns) = %d, want one per template", len(txns))
	}
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.After(txns[i-1].Date) {
			t.Errorf("transactions not newest-first at index %d", i)
		}
	}

	// Repeated reads return the same sequence.
	again, err := s.Transactions("ragul")
	if err != nil {
		t.Fatal(err)
	}
	for i := range txns {
		if !txns[i].Date.Equal(again[i].Date) || !txns[i].Amount.Equal(again[i].Amount) {
			t.Fatalf("transaction %d changed between reads", i)
		}
	}
}

func TestTransactionsSeededDeterminism(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return at }
	a := New(testDoc(t), nil, WithSeed(7), WithNow(clock))
	b := New(testDoc(t), nil, WithSeed(7), WithNow(clock))

	txnsA, _ := a.Transactions("ragul")
	txnsB, _ := b.Transactions("ragul")
	if len(txnsA) != len(txnsB) {
		t.Fatalf("lengths differ: %d vs %d", len(txnsA), len(txnsB))
	}
	for i := range txnsA {
		if !txnsA[i].Date.Equal(txnsB[i].Date) {
			t.Errorf("transaction %d: dates differ for identical seed", i)
		}
		if !txnsA[i].Balance.Equal(txnsB[i].Balance) {
			t.Errorf("transaction %d: balances differ for identical seed", i)
		}
	}
}

func TestAppendTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankdata.json")
	doc := testDoc(t)
	s := New(doc, NewFilePersister(path))

	txn, err := s.AppendTransaction("ragul", "Transfer to Priya", decimal.RequireFromString("-1500"))
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("3500"); !txn.Balance.Equal(want) {
		t.Errorf("txn.Balance = %s, want %s", txn.Balance, want)
	}

	acct, _ := s.GetAccount("ragul")
	if want := decimal.RequireFromString("3500"); !acct.Balance.Equal(want) {
		t.Errorf("balance after debit = %s, want %s", acct.Balance, want)
	}

	txns, _ := s.Transactions("ragul")
	if txns[0].Description != "Transfer to Priya" {
		t.Errorf("newest transaction = %q, want the appended one", txns[0].Description)
	}

	// The document on disk carries the new balance and template.
	reloaded, err := kb.Load(path)
	if err != nil {
		t.Fatalf("reload persisted document: %v", err)
	}
	if want := decimal.RequireFromString("3500"); !reloaded.Users["Ragul"].Balance.Equal(want) {
		t.Errorf("persisted balance = %s, want %s", reloaded.Users["Ragul"].Balance, want)
	}
	last := reloaded.TransactionsHistory[len(reloaded.TransactionsHistory)-1]
	if last.Name != "Transfer to Priya" {
		t.Errorf("persisted template = %q, want appended entry", last.Name)
	}
}

func TestAppendTransactionOverdraft(t *testing.T) {
	s := New(testDoc(t), nil)

	_, err := s.AppendTransaction("ragul", "Transfer to Priya", decimal.RequireFromString("-5000.01"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	acct, _ := s.GetAccount("ragul")
	if want := decimal.RequireFromString("5000"); !acct.Balance.Equal(want) {
		t.Errorf("balance changed after rejected debit: %s", acct.Balance)
	}
}

func TestAppendTransactionExactBalance(t *testing.T) {
	s := New(testDoc(t), nil)

	txn, err := s.AppendTransaction("ragul", "Transfer to Priya", decimal.RequireFromString("-5000"))
	if err != nil {
		t.Fatalf("debit to exactly zero rejected: %v", err)
	}
	if !txn.Balance.IsZero() {
		t.Errorf("txn.Balance = %s, want 0", txn.Balance)
	}
}

func TestAppendTransactionRollbackOnPersistFailure(t *testing.T) {
	doc := testDoc(t)
	s := New(doc, failingPersister{})

	templatesBefore := len(doc.TransactionsHistory)
	_, err := s.AppendTransaction("ragul", "Transfer to Priya", decimal.RequireFromString("-100"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}

	acct, _ := s.GetAccount("ragul")
	if want := decimal.RequireFromString("5000"); !acct.Balance.Equal(want) {
		t.Errorf("balance after failed persist = %s, want unchanged %s", acct.Balance, want)
	}
	if len(doc.TransactionsHistory) != templatesBefore {
		t.Errorf("templates grew despite failed persist")
	}
	txns, _ := s.Transactions("ragul")
	for _, txn := range txns {
		if txn.Description == "Transfer to Priya" {
			t.Error("failed transaction still visible in history")
		}
	}
}

func TestPayBill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankdata.json")
	doc := testDoc(t)
	s := New(doc, NewFilePersister(path))

	txn, err := s.PayBill("ragul", "Electricity Bill", decimal.RequireFromString("1240"))
	if err != nil {
		t.Fatal(err)
	}
	if txn.Description != "Bill Payment: Electricity Bill" {
		t.Errorf("txn.Description = %q", txn.Description)
	}
	if want := decimal.RequireFromString("3760"); !txn.Balance.Equal(want) {
		t.Errorf("txn.Balance = %s, want %s", txn.Balance, want)
	}

	for _, b := range s.Bills() {
		if b.Name == "Electricity Bill" {
			t.Error("paid bill still pending")
		}
	}
	if len(s.Bills()) != 1 {
		t.Errorf("len(Bills) = %d, want 1", len(s.Bills()))
	}
}

func TestPayBillInsufficientFunds(t *testing.T) {
	doc := testDoc(t)
	doc.Users["Ragul"].Balance = decimal.RequireFromString("100")
	s := New(doc, nil)

	_, err := s.PayBill("ragul", "Electricity Bill", decimal.RequireFromString("1240"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// The bill must still be pending.
	found := false
	for _, b := range s.Bills() {
		if b.Name == "Electricity Bill" {
			found = true
		}
	}
	if !found {
		t.Error("bill removed despite failed payment")
	}
}

func TestPayBillRollbackOnPersistFailure(t *testing.T) {
	doc := testDoc(t)
	s := New(doc, failingPersister{})

	_, err := s.PayBill("ragul", "Electricity Bill", decimal.RequireFromString("1240"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}

	if len(s.Bills()) != 2 {
		t.Errorf("len(Bills) = %d, want both restored", len(s.Bills()))
	}
	acct, _ := s.GetAccount("ragul")
	if want := decimal.RequireFromString("5000"); !acct.Balance.Equal(want) {
		t.Errorf("balance = %s, want unchanged %s", acct.Balance, want)
	}
}

func TestPayBillValidation(t *testing.T) {
	s := New(testDoc(t), nil)

	if _, err := s.PayBill("ragul", "", decimal.RequireFromString("10")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name: err = %v, want ErrInvalidInput", err)
	}
	if _, err := s.PayBill("ragul", "Water Bill", decimal.RequireFromString("-5")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative amount: err = %v, want ErrInvalidInput", err)
	}
}

func TestAddBill(t *testing.T) {
	s := New(testDoc(t), nil)

	bill := models.Bill{Name: "Gas Bill", Amount: decimal.RequireFromString("450"), Due: "2026-09-20"}
	if err := s.AddBill("ragul", bill); err != nil {
		t.Fatal(err)
	}

	var added *models.Bill
	for _, b := range s.Bills() {
		if b.Name == "Gas Bill" {
			added = &b
			break
		}
	}
	if added == nil {
		t.Fatal("added bill not found")
	}
	if added.Status != models.BillStatusUpcoming {
		t.Errorf("Status = %q, want default %q", added.Status, models.BillStatusUpcoming)
	}

	if err := s.AddBill("nobody", bill); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("AddBill for unknown user: err = %v, want ErrUserNotFound", err)
	}
}

func validRequest() models.AccountRequest {
	return models.AccountRequest{
		FullName:     "Priya Raman",
		Email:        "priya@example.com",
		Phone:        "9876543210",
		Address:      "12 Anna Salai, Chennai",
		AccountType:  "Savings Account",
		Username:     "priyaraman",
		PasswordHash: "$2a$04$fakehashfortest",
		AadharNumber: "123456789012",
		PANNumber:    "ABCDE1234F",
	}
}

func TestRequestNewAccount(t *testing.T) {
	s := New(testDoc(t), nil)

	req, err := s.RequestNewAccount(validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if req.RequestID == "" {
		t.Error("RequestID not assigned")
	}
	if req.Status != models.RequestStatusPending {
		t.Errorf("Status = %q, want %q", req.Status, models.RequestStatusPending)
	}
	if req.RequestDate == "" {
		t.Error("RequestDate not assigned")
	}

	queue := s.AccountRequests()
	if len(queue) != 1 || queue[0].RequestID != req.RequestID {
		t.Errorf("request not queued: %+v", queue)
	}
}

func TestRequestNewAccountValidation(t *testing.T) {
	s := New(testDoc(t), nil)

	tests := []struct {
		name   string
		mutate func(*models.AccountRequest)
	}{
		{"missing full name", func(r *models.AccountRequest) { r.FullName = "" }},
		{"missing email", func(r *models.AccountRequest) { r.Email = "" }},
		{"missing phone", func(r *models.AccountRequest) { r.Phone = "" }},
		{"missing address", func(r *models.AccountRequest) { r.Address = "" }},
		{"missing account type", func(r *models.AccountRequest) { r.AccountType = "" }},
		{"missing username", func(r *models.AccountRequest) { r.Username = "" }},
		{"missing password", func(r *models.AccountRequest) { r.PasswordHash = "" }},
		{"short aadhar", func(r *models.AccountRequest) { r.AadharNumber = "12345" }},
		{"aadhar with letters", func(r *models.AccountRequest) { r.AadharNumber = "12345678901a" }},
		{"bad pan", func(r *models.AccountRequest) { r.PANNumber = "1234567890" }},
		{"lowercase pan", func(r *models.AccountRequest) { r.PANNumber = "abcde1234f" }},
		{"taken username", func(r *models.AccountRequest) { r.Username = "RAGUL" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if _, err := s.RequestNewAccount(req); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if len(s.AccountRequests()) != 0 {
		t.Errorf("invalid requests were queued: %d", len(s.AccountRequests()))
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankdata.json")
	doc := testDoc(t)

	if err := NewFilePersister(path).Save(doc); err != nil {
		t.Fatal(err)
	}

	reloaded, err := kb.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Users) != 1 {
		t.Errorf("len(Users) = %d, want 1", len(reloaded.Users))
	}
	if !reloaded.Users["Ragul"].Balance.Equal(doc.Users["Ragul"].Balance) {
		t.Error("balance changed across save/load")
	}
}
