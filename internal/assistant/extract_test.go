package assistant

import (
	"testing"

	"mledger/internal/core"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"sent to", "How much did I send to John?", "John"},
		{"paid to", "What did I pay to Safaricom yesterday", "Safaricom"},
		{"received from", "Total received from NCBA", "NCBA"},
		{"got from", "What I got from Jane?", "Jane"},
		{"transactions with", "Show all transactions with KPLC", "KPLC"},
		{"total amount sent to", "Total amount I sent to Mary", "Mary"},
		{"multi-word name stops at first word", "Highest sent to John Mwangi", "John"},
		{"question mark terminator", "Total sent to Safaricom?", "Safaricom"},
		{"hyphenated name", "How much with m-shwari account", "m-shwari"},
		{"no name", "What is my balance", ""},
		{"bare question", "hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.question); got != tt.want {
				t.Errorf("ExtractName(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestExtractNamePatternPrecedence(t *testing.T) {
	// The explicit "total received from" form must not be swallowed by the
	// generic "from" pattern; both capture the same name here, but the point
	// is the specific pattern matches first.
	q := "Total amount I received from NCBA Bank"
	if got := ExtractName(q); got != "NCBA" {
		t.Errorf("ExtractName(%q) = %q, want NCBA", q, got)
	}
}

func TestExtractDirection(t *testing.T) {
	tests := []struct {
		question string
		want     core.Direction
	}{
		{"Total sent to John", core.DirectionSent},
		{"How much did I send to John", core.DirectionSent},
		{"What I paid to KPLC", core.DirectionSent},
		{"Total received from NCBA", core.DirectionReceived},
		{"What I got from Jane", core.DirectionReceived},
		{"Show transactions with KPLC", core.DirectionAll},
		{"balance please", core.DirectionAll},
		// "received from" wins even when a sent word appears later.
		{"received from John after I sent money", core.DirectionReceived},
	}

	for _, tt := range tests {
		if got := ExtractDirection(tt.question); got != tt.want {
			t.Errorf("ExtractDirection(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		question    string
		wantKeyword string
		wantDisplay string
	}{
		{"How much did I spend on airtime?", "airtime", "Airtime"},
		{"highest withdrawal", "withdraw", "Withdrawals"},
		{"How much on paybill", "paybill", "Bills & PayBill"},
		{"spent on bills", "paybill", "Bills & PayBill"},
		{"how much shopping", "buy goods", "Buy Goods/Shopping"},
		{"spending on transfers", "send money", "Send Money/Transfers"},
		{"how much to m-shwari", "m-shwari", "M-Shwari"},
		{"how much to mshwari", "m-shwari", "M-Shwari"},
		{"what is my balance", "", ""},
	}

	for _, tt := range tests {
		keyword, display := MatchCategory(tt.question)
		if keyword != tt.wantKeyword || display != tt.wantDisplay {
			t.Errorf("MatchCategory(%q) = (%q, %q), want (%q, %q)",
				tt.question, keyword, display, tt.wantKeyword, tt.wantDisplay)
		}
	}
}

func TestMatchCategoryOrder(t *testing.T) {
	// Airtime precedes withdraw in the table, so a question naming both
	// resolves to airtime.
	keyword, _ := MatchCategory("airtime or withdraw?")
	if keyword != "airtime" {
		t.Errorf("expected first table entry to win, got %q", keyword)
	}
}
