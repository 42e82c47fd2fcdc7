package intent

import "testing"

func TestClassifyKeywords(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	tests := []struct {
		in   string
		want Intent
	}{
		{"what is my balance", BalanceInquiry},
		{"show me my account balance", BalanceInquiry},
		{"I want to transfer money", FundTransfer},
		{"send money to my friend", FundTransfer},
		{"show my transaction history", TransactionHistory},
		{"pay bill for electricity", BillPayment},
		{"tell me about cgbank", BankInfo},
		{"home loan interest rates", LoanInfo},
		{"modi scheme details", SchemeInfo},
		{"how to open a student account", AccountInfo},
		{"monthly report please", MonthlyReport},
	}
	for _, tt := range tests {
		got, ok := c.Classify(tt.in)
		if !ok {
			t.Errorf("Classify(%q) = no match, want %s", tt.in, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	// "account statement" hits both transaction_history ("statement") and
	// monthly_report ("account statement"); the earlier category wins.
	got, ok := c.Classify("account statement")
	if !ok || got != TransactionHistory {
		t.Errorf("Classify(%q) = %s, %v; want %s", "account statement", got, ok, TransactionHistory)
	}

	// "transfer my balance" hits balance_inquiry before fund_transfer.
	got, ok = c.Classify("transfer my balance")
	if !ok || got != BalanceInquiry {
		t.Errorf("Classify(%q) = %s, %v; want %s", "transfer my balance", got, ok, BalanceInquiry)
	}
}

func TestClassifyWordBoundaries(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	// "rebalance" must not trigger the "balance" keyword.
	if got, ok := c.Classify("rebalance my portfolio"); ok && got == BalanceInquiry {
		t.Errorf("Classify(%q) matched balance_inquiry through a substring", "rebalance my portfolio")
	}
}

func TestClassifyFuzzyFallback(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	got, ok := c.Classify("balanse")
	if !ok || got != BalanceInquiry {
		t.Errorf("Classify(%q) = %s, %v; want %s via fuzzy match", "balanse", got, ok, BalanceInquiry)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	for _, in := range []string{"", "   ", "the weather is lovely in zurich today"} {
		if got, ok := c.Classify(in); ok {
			t.Errorf("Classify(%q) = %s, want no match", in, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultCategories)

	first, firstOK := c.Classify("loan account transfer")
	for i := 0; i < 100; i++ {
		got, ok := c.Classify("loan account transfer")
		if got != first || ok != firstOK {
			t.Fatalf("iteration %d: Classify changed from (%s, %v) to (%s, %v)", i, first, firstOK, got, ok)
		}
	}
}

func TestRatio(t *testing.T) {
	if r := Ratio("balance", "balance"); r != 1.0 {
		t.Errorf("Ratio(identical) = %v, want 1.0", r)
	}
	if r := Ratio("balanse", "balance"); r < 0.6 {
		t.Errorf("Ratio(balanse, balance) = %v, want >= 0.6", r)
	}
	if r := Ratio("xyz", "balance"); r >= 0.6 {
		t.Errorf("Ratio(xyz, balance) = %v, want < 0.6", r)
	}
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"home loan", "personal loan", "vehicle loan"}

	got, ok := ClosestMatch("personal lone", candidates, DefaultCutoff)
	if !ok || got != "personal loan" {
		t.Errorf("ClosestMatch = %q, %v; want %q", got, ok, "personal loan")
	}

	if got, ok := ClosestMatch("zzzzz", candidates, DefaultCutoff); ok {
		t.Errorf("ClosestMatch(zzzzz) = %q, want no match", got)
	}
}
