package statement

import (
	"errors"
	"testing"

	"mledger/internal/core"
)

const sampleStatement = `MPESA STATEMENT
15/03/2024 14:30 SCF1KQXT2B Funds received from NCBA Bank Received Ksh 5,000 Balance: Ksh 7,500
14/03/2024 09:12 SCE9PLMN0A Send Money to John Mwangi Sent Ksh 400 Balance: Ksh 2,500
14/03/2024 09:12 Send Money transaction cost Charge Ksh 13 Balance: Ksh 2,487
10/03/2024 11:03 SCA2VWXY5D Agent withdrawal Withdrawal Fee Ksh 28
some unreadable OCR noise line
`

func TestParse(t *testing.T) {
	txns, err := Parse(sampleStatement)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(txns) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(txns))
	}

	first := txns[0]
	if first.Date != "2024-03-15" {
		t.Errorf("date = %q, want 2024-03-15", first.Date)
	}
	if first.Time != "14:30" {
		t.Errorf("time = %q, want 14:30", first.Time)
	}
	if first.Reference != "SCF1KQXT2B" {
		t.Errorf("reference = %q, want SCF1KQXT2B", first.Reference)
	}
	if first.Type != "received" {
		t.Errorf("type = %q, want received", first.Type)
	}
	if first.Party != "NCBA Bank" {
		t.Errorf("party = %q, want NCBA Bank", first.Party)
	}
	if first.Category != core.CategoryIncome {
		t.Errorf("category = %q, want income", first.Category)
	}
	if first.AmountCents != 500000 {
		t.Errorf("amount = %d, want 500000", first.AmountCents)
	}
	if first.BalanceCents != 750000 {
		t.Errorf("balance = %d, want 750000", first.BalanceCents)
	}
}

func TestParseCategories(t *testing.T) {
	txns, err := Parse(sampleStatement)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []core.Category{
		core.CategoryIncome,
		core.CategoryExpense,
		core.CategoryCharge,
		core.CategoryCharge, // withdrawal fee classifies as charge
	}
	for i, cat := range want {
		if txns[i].Category != cat {
			t.Errorf("transaction %d category = %q, want %q", i, txns[i].Category, cat)
		}
	}
}

func TestParseMissingFields(t *testing.T) {
	txns, err := Parse(sampleStatement)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	// Third line has no receipt number, so the reference falls back to "-".
	if txns[2].Reference != "-" {
		t.Errorf("reference = %q, want -", txns[2].Reference)
	}
	if txns[2].Party != "-" {
		t.Errorf("party = %q, want -", txns[2].Party)
	}

	// Fourth line has no balance.
	if txns[3].BalanceCents != 0 {
		t.Errorf("missing balance should parse as 0, got %d", txns[3].BalanceCents)
	}
}

func TestParseOrderPreserved(t *testing.T) {
	txns, err := Parse(sampleStatement)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if txns[0].Date != "2024-03-15" || txns[3].Date != "2024-03-10" {
		t.Error("statement line order must survive parsing")
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("nothing that looks like a statement")
	if !errors.Is(err, core.ErrEmptyStatement) {
		t.Errorf("expected ErrEmptyStatement, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	txns, _ := Parse(sampleStatement)
	want := "4 transactions (1 income, 1 expense, 2 charge)"
	if got := Describe(txns); got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}
