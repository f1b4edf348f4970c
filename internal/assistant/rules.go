package assistant

import (
	"fmt"
	"strings"

	"mledger/internal/core"
)

// question carries the pre-extracted entities every rule predicates over.
// Extraction runs once per question, before any rule is consulted.
type question struct {
	raw   string
	lower string

	name       string
	direction  core.Direction
	catKeyword string
	catDisplay string
}

func parseQuestion(raw string) question {
	q := question{raw: raw, lower: strings.ToLower(raw)}
	q.name = ExtractName(raw)
	q.direction = ExtractDirection(raw)
	q.catKeyword, q.catDisplay = MatchCategory(raw)
	return q
}

func (q question) has(s string) bool {
	return strings.Contains(q.lower, s)
}

func (q question) hasAny(ss ...string) bool {
	for _, s := range ss {
		if q.has(s) {
			return true
		}
	}
	return false
}

// rule pairs a predicate with its answer branch. The table is evaluated in
// slice order and the first matching rule answers; there is no fallthrough
// and no scoring. Counterparty questions sit on top so "highest sent to
// John" never falls through to the generic highest-expense rule.
type rule struct {
	name   string
	match  func(q question) bool
	answer func(s *core.Snapshot, q question) string
}

var rules = []rule{
	{"counterparty", matchCounterparty, answerCounterparty},
	{"category highest", matchCategoryHighest, answerCategoryHighest},
	{"category spend", matchCategorySpend, answerCategorySpend},
	{"total income", matchTotal("income"), totalAnswer(core.CategoryIncome, "Your total income is %s from %d transactions.")},
	{"total charges", matchTotal("charge"), totalAnswer(core.CategoryCharge, "You paid %s in M-Pesa charges across %d transactions.")},
	{"total expenses", matchTotal("expense"), totalAnswer(core.CategoryExpense, "Your total expenses are %s from %d transactions.")},
	{"highest income", matchHighest("income"), highestAnswer(core.CategoryIncome, "income")},
	{"highest expense", matchHighest("expense"), highestAnswer(core.CategoryExpense, "expense")},
	{"highest charge", matchHighest("charge"), highestAnswer(core.CategoryCharge, "charge")},
	{"recent", func(q question) bool {
		return q.hasAny("recent transactions", "latest transactions", "last 5")
	}, answerRecent},
	{"top expenses", func(q question) bool {
		return q.hasAny("top 5 expenses", "highest 5 expenses", "top expenses")
	}, answerTopExpenses},
	{"top income", func(q question) bool {
		return q.hasAny("top 5 income", "highest 5 income", "top income")
	}, answerTopIncome},
	{"summary", func(q question) bool {
		return q.hasAny("balance", "summary", "overview")
	}, answerSummary},
	{"count", func(q question) bool {
		return q.hasAny("how many", "count")
	}, answerCount},
	{"largest overall", func(q question) bool {
		return q.hasAny("biggest", "largest")
	}, answerLargest},
	{"help", func(q question) bool {
		return q.hasAny("help", "what can you do")
	}, answerHelp},
}

// Cues that turn a question containing a name into a counterparty question.
var counterpartyCues = []string{
	"sent to", "send to", "paid to", "received from", "got from",
	"transactions with", "transaction with", "how much", "total amount",
	"total", "highest", "largest", "biggest",
}

func matchCounterparty(q question) bool {
	return q.name != "" && q.hasAny(counterpartyCues...)
}

func matchCategoryHighest(q question) bool {
	return q.hasAny("highest", "largest", "biggest") && q.catKeyword != ""
}

func matchCategorySpend(q question) bool {
	return q.hasAny("how much", "spent on", "spending on") && q.catKeyword != ""
}

func matchTotal(word string) func(q question) bool {
	return func(q question) bool {
		return q.has("total "+word) || (q.has(word) && q.has("total"))
	}
}

func matchHighest(word string) func(q question) bool {
	return func(q question) bool {
		return q.hasAny("highest "+word, "largest "+word, "biggest "+word)
	}
}

// directionPhrase mirrors the answer templates: "sent to", "received from"
// or "with".
func directionPhrase(d core.Direction) string {
	switch d {
	case core.DirectionSent:
		return "sent to"
	case core.DirectionReceived:
		return "received from"
	}
	return "with"
}

func answerCounterparty(s *core.Snapshot, q question) string {
	dirText := directionPhrase(q.direction)
	matches := s.FilterByParty(q.name, q.direction)
	if len(matches) == 0 {
		return fmt.Sprintf("No transactions found %s %s.", dirText, q.name)
	}

	if q.hasAny("highest", "largest", "biggest") {
		highest, _ := core.Highest(matches)
		var b strings.Builder
		fmt.Fprintf(&b, "Your highest amount %s %s was %s on %s.\n\n",
			dirText, q.name, kes(highest.AmountCents), highest.Date)
		b.WriteString(detailLines(highest))
		return b.String()
	}

	if q.has("total amount") || (q.has("total") && !q.has("show all")) {
		total := core.SumAmounts(matches)
		return fmt.Sprintf("You %s %s a total of %s across %d transaction%s.",
			dirText, q.name, kes(total), len(matches), plural(len(matches)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are all transactions %s %s:\n\n", dirText, q.name)
	for i, t := range matches {
		b.WriteString(timedItem(i, t))
	}
	fmt.Fprintf(&b, "Total: %s (%d transaction%s)",
		kes(core.SumAmounts(matches)), len(matches), plural(len(matches)))
	return b.String()
}

func answerCategoryHighest(s *core.Snapshot, q question) string {
	matches := s.FilterByKeyword(q.catKeyword)

	typeText := ""
	switch {
	case q.has("income"):
		matches = keepCategory(matches, core.CategoryIncome)
		typeText = "income"
	case q.has("expense"):
		matches = keepCategory(matches, core.CategoryExpense)
		typeText = "expense"
	}

	if len(matches) == 0 {
		if typeText == "" {
			return fmt.Sprintf("No %s transactions found.", q.catDisplay)
		}
		return fmt.Sprintf("No %s %s transactions found.", q.catDisplay, typeText)
	}

	label := typeText
	if label == "" {
		label = "transaction"
	}
	highest, _ := core.Highest(matches)
	var b strings.Builder
	fmt.Fprintf(&b, "Your highest %s %s was %s on %s.\n\n",
		q.catDisplay, label, kes(highest.AmountCents), highest.Date)
	b.WriteString(detailLines(highest))
	return b.String()
}

func keepCategory(txns []core.Transaction, cat core.Category) []core.Transaction {
	var out []core.Transaction
	for _, t := range txns {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

func answerCategorySpend(s *core.Snapshot, q question) string {
	matches := s.FilterByKeyword(q.catKeyword)
	if len(matches) == 0 {
		return fmt.Sprintf("No %s transactions found.", q.catDisplay)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You spent %s on %s (%d transactions).\n\n",
		kes(core.SumAmounts(matches)), q.catDisplay, len(matches))
	for i, t := range matches {
		b.WriteString(datedItem(i, t))
	}
	return b.String()
}

func totalAnswer(cat core.Category, template string) func(s *core.Snapshot, q question) string {
	return func(s *core.Snapshot, _ question) string {
		matches := s.FilterByCategory(cat)
		return fmt.Sprintf(template, kes(core.SumAmounts(matches)), len(matches))
	}
}

func highestAnswer(cat core.Category, noun string) func(s *core.Snapshot, q question) string {
	return func(s *core.Snapshot, _ question) string {
		highest, ok := core.Highest(s.FilterByCategory(cat))
		if !ok {
			return fmt.Sprintf("No %s transactions found.", noun)
		}
		return fmt.Sprintf("Your highest %s was %s on %s.\n\n%s",
			noun, kes(highest.AmountCents), highest.Date, detailLines(highest))
	}
}

func answerRecent(s *core.Snapshot, _ question) string {
	recent := s.Recent(5)
	if len(recent) == 0 {
		return "No recent transactions found."
	}

	var b strings.Builder
	b.WriteString("Here are your recent transactions:\n\n")
	for i, t := range recent {
		b.WriteString(datedItem(i, t))
	}
	return b.String()
}

func answerTopExpenses(s *core.Snapshot, _ question) string {
	top := core.TopByAmount(s.FilterByCategory(core.CategoryExpense), 5)
	if len(top) == 0 {
		return "No expense transactions found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your top %d expenses (Total: %s):\n\n", len(top), kes(core.SumAmounts(top)))
	for i, t := range top {
		b.WriteString(datedItem(i, t))
	}
	return b.String()
}

func answerTopIncome(s *core.Snapshot, _ question) string {
	top := core.TopByAmount(s.FilterByCategory(core.CategoryIncome), 5)
	if len(top) == 0 {
		return "No income transactions found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your top %d income sources (Total: %s):\n\n", len(top), kes(core.SumAmounts(top)))
	for i, t := range top {
		b.WriteString(datedItem(i, t))
	}
	return b.String()
}

func answerSummary(s *core.Snapshot, _ question) string {
	sum := s.Summarize()

	var b strings.Builder
	b.WriteString("Here's your financial summary:\n\n")
	fmt.Fprintf(&b, "Income: %s (%d transactions)\n", kes(sum.TotalIncomeCents), sum.IncomeCount)
	fmt.Fprintf(&b, "Expenses: %s (%d transactions)\n", kes(sum.TotalExpenseCents), sum.ExpenseCount)
	fmt.Fprintf(&b, "Charges: %s (%d transactions)\n\n", kes(sum.TotalChargeCents), sum.ChargeCount)
	fmt.Fprintf(&b, "Net: %s", kes(sum.NetBalanceCents))
	if sum.NetBalanceCents > 0 {
		b.WriteString(" - You're in the positive!")
	}
	return b.String()
}

func answerCount(s *core.Snapshot, _ question) string {
	sum := s.Summarize()
	return fmt.Sprintf("You have %d total transactions:\nIncome: %d\nExpenses: %d\nCharges: %d",
		s.Len(), sum.IncomeCount, sum.ExpenseCount, sum.ChargeCount)
}

func answerLargest(s *core.Snapshot, _ question) string {
	largest, ok := s.Largest()
	if !ok {
		return "No transactions found."
	}
	return fmt.Sprintf("Your largest transaction was %s on %s.\n\n%s",
		kes(largest.AmountCents), largest.Date, detailLines(largest))
}

func answerHelp(_ *core.Snapshot, _ question) string {
	return `I can help you with:

• "Total received from NCBA" or "Total sent to Safaricom"
• "Highest amount sent to John"
• "Show all transactions with KPLC"
• "How much did I spend on airtime?"
• "What's my total income?"
• "What are my M-Pesa charges?"
• "Show my recent transactions"
• "Top 5 expenses"
• "What's my balance summary?"
• "How many transactions do I have?"

Just ask naturally!`
}
