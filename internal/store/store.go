// Package store is the ledger: accounts, transactions, bills and the account
// request queue, backed by the bank data document. Every mutating operation
// runs inside one mutex and either fully applies (balance, transaction log,
// persisted document) or has no effect.
package store

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bank-assistant-go/internal/kb"
	"bank-assistant-go/internal/models"
)

// Persister writes the whole document after a mutation. The write must be
// synchronous-commit: when Save returns nil the mutation is durable.
type Persister interface {
	Save(doc *kb.Document) error
}

// Store owns the in-memory document and serializes all access to it.
type Store struct {
	mu         sync.Mutex
	doc        *kb.Document
	index      map[string]string // lowercase username -> document key
	history    map[string][]models.Transaction
	persister  Persister
	rng        *rand.Rand
	now        func() time.Time
	windowDays int
}

// Option configures a Store.
type Option func(*Store)

// WithSeed makes history synthesis reproducible. Production wiring seeds
// from the clock; tests pass a fixed seed.
func WithSeed(seed int64) Option {
	return func(s *Store) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithHistoryWindow sets how many days back synthesized transactions are
// spread over.
func WithHistoryWindow(days int) Option {
	return func(s *Store) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithNow replaces the clock used for history synthesis. A fixed seed is
// only reproducible together with a fixed clock, since synthesized dates are
// offsets from now.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a store over a loaded document. The username index is built
// once here; lookups never scan.
func New(doc *kb.Document, p Persister, opts ...Option) *Store {
	s := &Store{
		doc:        doc,
		index:      make(map[string]string, len(doc.Users)),
		history:    make(map[string][]models.Transaction),
		persister:  p,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		windowDays: 30,
	}
	for username := range doc.Users {
		s.index[strings.ToLower(username)] = username
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAccount looks an account up by username, case-insensitively, and
// returns a copy.
func (s *Store) GetAccount(username string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.lookup(username)
	if !ok {
		return models.Account{}, ErrUserNotFound
	}
	return *acct, nil
}

// VerifyCredentials compares secret against the stored bcrypt hash. It
// reports false for unknown users as well, so callers cannot distinguish
// the two cases.
func (s *Store) VerifyCredentials(username, secret string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.lookup(username)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(secret)) == nil
}

// Authenticate verifies credentials and returns the account on success.
// Unknown users and wrong passwords both come back as ErrInvalidCredentials.
func (s *Store) Authenticate(username, secret string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.lookup(username)
	if !ok {
		return models.Account{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(secret)) != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return *acct, nil
}

// Transactions returns the account's transaction sequence, newest first.
// The first call synthesizes a history from the document's templates;
// later calls return the cached sequence so repeated reads are stable.
func (s *Store) Transactions(username string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.lookup(username)
	if !ok {
		return nil, ErrUserNotFound
	}
	hist := s.ensureHistory(acct)
	out := make([]models.Transaction, len(hist))
	copy(out, hist)
	return out, nil
}

// AppendTransaction applies a signed amount to the account: credits
// positive, debits negative. A debit that would take the balance below zero
// is rejected with ErrInsufficientFunds and changes nothing.
func (s *Store) AppendTransaction(username, description string, amount decimal.Decimal) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(username, description, amount)
}

// PayBill debits amount with a bill-payment transaction and removes the
// matching bill from the pending collection. Both happen, or neither does.
func (s *Store) PayBill(username, billName string, amount decimal.Decimal) (models.Transaction, error) {
	if strings.TrimSpace(billName) == "" {
		return models.Transaction{}, fmt.Errorf("%w: bill name required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return models.Transaction{}, fmt.Errorf("%w: bill amount must be positive", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldBills := s.doc.Bills
	remaining := make([]models.Bill, 0, len(s.doc.Bills))
	for _, b := range s.doc.Bills {
		if b.Name != billName {
			remaining = append(remaining, b)
		}
	}
	s.doc.Bills = remaining

	txn, err := s.append(username, "Bill Payment: "+billName, amount.Neg())
	if err != nil {
		s.doc.Bills = oldBills
		return models.Transaction{}, err
	}
	return txn, nil
}

// AddBill registers a new pending bill.
func (s *Store) AddBill(username string, bill models.Bill) error {
	if strings.TrimSpace(bill.Name) == "" {
		return fmt.Errorf("%w: bill name required", ErrInvalidInput)
	}
	if !bill.Amount.IsPositive() {
		return fmt.Errorf("%w: bill amount must be positive", ErrInvalidInput)
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusUpcoming
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(username); !ok {
		return ErrUserNotFound
	}

	oldBills := s.doc.Bills
	s.doc.Bills = append(s.doc.Bills, bill)
	if err := s.persist(); err != nil {
		s.doc.Bills = oldBills
		return err
	}
	return nil
}

var (
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// RequestNewAccount validates and queues an account application. The queue
// is append-only; nothing here creates a usable account.
func (s *Store) RequestNewAccount(req models.AccountRequest) (models.AccountRequest, error) {
	missing := ""
	switch {
	case strings.TrimSpace(req.FullName) == "":
		missing = "full name"
	case strings.TrimSpace(req.Email) == "":
		missing = "email"
	case strings.TrimSpace(req.Phone) == "":
		missing = "phone"
	case strings.TrimSpace(req.Address) == "":
		missing = "address"
	case strings.TrimSpace(req.AccountType) == "":
		missing = "account type"
	case strings.TrimSpace(req.Username) == "":
		missing = "username"
	case req.PasswordHash == "":
		missing = "password"
	}
	if missing != "" {
		return models.AccountRequest{}, fmt.Errorf("%w: %s required", ErrInvalidInput, missing)
	}
	if !aadharPattern.MatchString(req.AadharNumber) {
		return models.AccountRequest{}, fmt.Errorf("%w: aadhar number must be 12 digits", ErrInvalidInput)
	}
	if !panPattern.MatchString(req.PANNumber) {
		return models.AccountRequest{}, fmt.Errorf("%w: invalid PAN number", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.index[strings.ToLower(req.Username)]; taken {
		return models.AccountRequest{}, fmt.Errorf("%w: username already exists", ErrInvalidInput)
	}

	req.RequestID = uuid.NewString()
	req.Status = models.RequestStatusPending
	req.RequestDate = time.Now().Format("2006-01-02 15:04:05")

	oldRequests := s.doc.AccountRequests
	s.doc.AccountRequests = append(s.doc.AccountRequests, req)
	if err := s.persist(); err != nil {
		s.doc.AccountRequests = oldRequests
		return models.AccountRequest{}, err
	}
	return req, nil
}

// AccountRequests returns a copy of the pending application queue.
func (s *Store) AccountRequests() []models.AccountRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AccountRequest, len(s.doc.AccountRequests))
	copy(out, s.doc.AccountRequests)
	return out
}

// Bills returns a copy of the pending bills collection.
func (s *Store) Bills() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bill, len(s.doc.Bills))
	copy(out, s.doc.Bills)
	return out
}

// BankInfo returns the static bank information catalog.
func (s *Store) BankInfo() models.BankInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.BankInfo
}

// LoanProducts returns the loan catalog keyed by internal id.
func (s *Store) LoanProducts() map[string]models.LoanProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.LoanProduct, len(s.doc.LoanProducts))
	for k, v := range s.doc.LoanProducts {
		out[k] = v
	}
	return out
}

// GovernmentSchemes returns the scheme catalog keyed by internal id.
func (s *Store) GovernmentSchemes() map[string]models.Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Scheme, len(s.doc.GovernmentSchemes))
	for k, v := range s.doc.GovernmentSchemes {
		out[k] = v
	}
	return out
}

// AccountTypes returns the account type catalog keyed by internal id.
func (s *Store) AccountTypes() map[string]models.AccountType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.AccountType, len(s.doc.AccountInfo))
	for k, v := range s.doc.AccountInfo {
		out[k] = v
	}
	return out
}

// SpendingCategories returns the read-only spending chart data.
func (s *Store) SpendingCategories() []models.SpendingCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SpendingCategory, len(s.doc.SpendingCategories))
	copy(out, s.doc.SpendingCategories)
	return out
}

// CannedResponses returns the configured response set for a response type.
func (s *Store) CannedResponses(kind string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.doc.BotResponses[kind]
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// lookup resolves a username through the lowercase index. Caller holds mu.
func (s *Store) lookup(username string) (*models.Account, bool) {
	key, ok := s.index[strings.ToLower(username)]
	if !ok {
		return nil, false
	}
	acct, ok := s.doc.Users[key]
	return acct, ok
}

// ensureHistory synthesizes the account's initial transaction sequence on
// first use: one entry per template, backdated within the window, balance
// snapshots interpolated below the current balance. Caller holds mu.
func (s *Store) ensureHistory(acct *models.Account) []models.Transaction {
	key := strings.ToLower(acct.Username)
	if hist, ok := s.history[key]; ok {
		return hist
	}
	now := s.now()
	hist := make([]models.Transaction, 0, len(s.doc.TransactionsHistory))
	for _, tpl := range s.doc.TransactionsHistory {
		hist = append(hist, models.Transaction{
			Date:        now.AddDate(0, 0, -(s.rng.Intn(s.windowDays) + 1)),
			Description: tpl.Name,
			Amount:      tpl.Amount,
			Balance:     acct.Balance.Sub(decimal.NewFromFloat(s.rng.Float64() * 1000).Round(2)),
		})
	}
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Date.After(hist[j].Date) })
	s.history[key] = hist
	return hist
}

// append is the single mutation path for balances. Caller holds mu.
func (s *Store) append(username, description string, amount decimal.Decimal) (models.Transaction, error) {
	acct, ok := s.lookup(username)
	if !ok {
		return models.Transaction{}, ErrUserNotFound
	}

	newBalance := acct.Balance.Add(amount)
	if newBalance.IsNegative() {
		return models.Transaction{}, ErrInsufficientFunds
	}

	key := strings.ToLower(acct.Username)
	oldBalance := acct.Balance
	oldHistory := s.ensureHistory(acct)
	oldTemplates := s.doc.TransactionsHistory

	txn := models.Transaction{
		Date:        time.Now(),
		Description: description,
		Amount:      amount,
		Balance:     newBalance,
	}
	acct.Balance = newBalance
	s.history[key] = append([]models.Transaction{txn}, oldHistory...)
	s.doc.TransactionsHistory = append(s.doc.TransactionsHistory, models.HistoryTemplate{
		Name:   description,
		Amount: amount,
	})

	if err := s.persist(); err != nil {
		acct.Balance = oldBalance
		s.history[key] = oldHistory
		s.doc.TransactionsHistory = oldTemplates
		return models.Transaction{}, err
	}
	return txn, nil
}

// persist saves the whole document. Caller holds mu.
func (s *Store) persist() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.doc); err != nil {
		log.Errorf("persist bank data: %v", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
