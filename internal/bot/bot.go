// Package bot is the dialogue engine: it resolves a classified intent plus
// per-session state into a ledger query or a canned response, and runs the
// report-download confirmation flow on top.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bank-assistant-go/internal/intent"
	"bank-assistant-go/internal/models"
	"bank-assistant-go/internal/render"
	"bank-assistant-go/internal/report"
	"bank-assistant-go/internal/store"
)

// Responder is the optional free-form fallback for messages no intent
// matches.
type Responder interface {
	Respond(ctx context.Context, message, extra string) (string, error)
}

// Exchange is one user/bot turn kept in the bounded session history.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

const maxHistory = 10

// reportWindowDays is the trailing window a monthly report covers.
const reportWindowDays = 30

// Session is per-user conversational state. A session holds at most one
// pending action: a report awaiting download confirmation. Requesting a
// new report silently replaces an unconfirmed one.
type Session struct {
	Username      string
	Authenticated bool
	History       []Exchange

	pending *report.Report
}

// AwaitingConfirmation reports whether the session has a stashed report.
func (s *Session) AwaitingConfirmation() bool { return s.pending != nil }

var (
	greetingWords     = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	thanksWords       = []string{"thank", "thanks", "appreciate"}
	affirmativeTokens = []string{"yes", "y", "download", "download report"}
	negativeTokens    = []string{"no", "n", "cancel"}
)

const (
	msgLoginBalance  = "Please log in to check your account balance."
	msgLoginHistory  = "Please log in to view your transaction history."
	msgLoginTransfer = "Please log in to initiate a fund transfer."
	msgLoginBills    = "Please log in to pay your bills."
	msgLoginReport   = "Please log in to view your monthly report."
	msgNoReportData  = "You don't have any transactions in the last month to generate a report."
	msgTryLater      = "I'm having trouble processing your request. Please try again later."
	msgReportCancel  = "Monthly report download cancelled. Let me know if you need anything else!"
)

// Bot wires the classifier, the ledger, the renderer and the optional
// free-form responder into one Process loop. One Bot serves all sessions
// concurrently; rngMu guards the shared canned-response picker.
type Bot struct {
	store      *store.Store
	classifier *intent.Classifier
	renderer   render.Renderer
	responder  Responder
	rngMu      sync.Mutex
	rng        *rand.Rand
	printer    *message.Printer
	greetRes   []*regexp.Regexp
	thanksRes  []*regexp.Regexp
}

type Option func(*Bot)

// WithResponder enables the free-form fallback.
func WithResponder(r Responder) Option {
	return func(b *Bot) { b.responder = r }
}

// WithSeed fixes the canned-response picker for reproducible output.
func WithSeed(seed int64) Option {
	return func(b *Bot) { b.rng = rand.New(rand.NewSource(seed)) }
}

func New(st *store.Store, cl *intent.Classifier, rd render.Renderer, opts ...Option) *Bot {
	b := &Bot{
		store:      st,
		classifier: cl,
		renderer:   rd,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		printer:    message.NewPrinter(language.English),
	}
	for _, w := range greetingWords {
		b.greetRes = append(b.greetRes, wordPattern(w))
	}
	for _, w := range thanksWords {
		b.thanksRes = append(b.thanksRes, wordPattern(w))
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func wordPattern(w string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
}

// Process handles one incoming message synchronously and records the
// exchange in the bounded history.
func (b *Bot) Process(ctx context.Context, s *Session, text string) string {
	reply := b.respond(ctx, s, text)
	s.History = append(s.History, Exchange{User: text, Bot: reply})
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
	return reply
}

func (b *Bot) respond(ctx context.Context, s *Session, text string) string {
	msg := intent.Normalize(text)

	authenticated := s.Authenticated
	var acct models.Account
	if authenticated {
		a, err := b.store.GetAccount(s.Username)
		if err != nil {
			authenticated = false
		} else {
			acct = a
		}
	}

	// Greetings and thanks outrank everything, including a pending
	// confirmation.
	if matchAny(b.greetRes, msg) {
		if authenticated {
			return fmt.Sprintf("Hello %s! %s", acct.Name, b.canned("greetings"))
		}
		return b.canned("greetings")
	}
	if matchAny(b.thanksRes, msg) {
		return b.canned("thanks")
	}

	it, classified := b.classifier.Classify(msg)

	if classified && it == intent.MonthlyReport {
		return b.startReport(s, authenticated, acct)
	}

	if s.pending != nil && isToken(msg, affirmativeTokens) {
		rep := *s.pending
		s.pending = nil
		ref, err := b.renderer.Render(acct, rep)
		if err != nil {
			return msgTryLater
		}
		return "Here's your download link:\n\n" + ref
	}
	if s.pending != nil && isToken(msg, negativeTokens) {
		s.pending = nil
		return msgReportCancel
	}

	if classified {
		return b.dispatch(msg, it, authenticated, acct)
	}

	if b.responder != nil {
		extra := ""
		if authenticated {
			extra = fmt.Sprintf("Customer: %s, Account Balance: %s", acct.Name, b.money(acct.Balance))
		}
		if out, err := b.responder.Respond(ctx, text, extra); err == nil {
			return out
		}
	}
	return b.canned("default")
}

// startReport builds the trailing-window report and stashes it pending the
// user's yes/no. An unconfirmed earlier stash is replaced without warning.
func (b *Bot) startReport(s *Session, authenticated bool, acct models.Account) string {
	if !authenticated {
		return msgLoginReport
	}
	txns, err := b.store.Transactions(s.Username)
	if err != nil {
		return msgTryLater
	}
	end := time.Now()
	rep := report.Build(txns, end.AddDate(0, 0, -reportWindowDays), end)
	if rep.TotalTransactions == 0 {
		return msgNoReportData
	}
	s.pending = &rep

	return fmt.Sprintf(
		"**📊 Monthly Report (%s to %s)**\n\n"+
			"**Total Transactions:** %d\n"+
			"**Total Credit:** %s\n"+
			"**Total Debit:** %s\n"+
			"**Net Change:** %s\n\n"+
			"Your statement file is ready! Would you like to download it now? (Yes/No)",
		rep.StartDate.Format("2006-01-02"), rep.EndDate.Format("2006-01-02"),
		rep.TotalTransactions, b.money(rep.TotalCredit), b.money(rep.TotalDebit),
		b.money(rep.NetChange))
}

// dispatch answers a classified intent. Only the report flow above touches
// session state; everything here is a stateless query.
func (b *Bot) dispatch(msg string, it intent.Intent, authenticated bool, acct models.Account) string {
	switch it {
	case intent.BalanceInquiry:
		if !authenticated {
			return msgLoginBalance
		}
		resp := b.canned("balance_inquiry")
		return strings.ReplaceAll(resp, "{balance}", b.money(acct.Balance))

	case intent.TransactionHistory:
		if !authenticated {
			return msgLoginHistory
		}
		return b.recentTransactions(acct.Username)

	case intent.FundTransfer:
		if !authenticated {
			return msgLoginTransfer
		}
		return b.canned("fund_transfer")

	case intent.BillPayment:
		if !authenticated {
			return msgLoginBills
		}
		return b.canned("bill_payment")

	case intent.BankInfo:
		return b.bankInfo(msg)

	case intent.LoanInfo:
		return b.loanInfo(msg)

	case intent.AccountInfo:
		return b.accountInfo(msg)

	case intent.SchemeInfo:
		return b.schemeInfo(msg)
	}
	return b.canned("default")
}

// canned picks one of the configured responses for a response type.
func (b *Bot) canned(kind string) string {
	set := b.store.CannedResponses(kind)
	if len(set) == 0 {
		return "I'm here to help."
	}
	b.rngMu.Lock()
	n := b.rng.Intn(len(set))
	b.rngMu.Unlock()
	return set[n]
}

func matchAny(patterns []*regexp.Regexp, msg string) bool {
	for _, re := range patterns {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

func isToken(msg string, tokens []string) bool {
	for _, t := range tokens {
		if msg == t {
			return true
		}
	}
	return false
}
