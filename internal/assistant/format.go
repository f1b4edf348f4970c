package assistant

import (
	"fmt"
	"strings"

	"mledger/internal/core"
)

// kes renders cents with the fixed currency prefix used in every answer.
func kes(cents int64) string {
	return "KES " + core.FormatAmount(cents)
}

// plural returns "s" for counts above one, matching the "transaction(s)"
// phrasing of the answer templates.
func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// detailLines renders the detail block every single-transaction answer ends
// with. The party line is omitted when the statement recorded no
// counterparty.
func detailLines(t core.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s at %s\n", t.Date, t.Time)
	fmt.Fprintf(&b, "Amount: %s\n", kes(t.AmountCents))
	fmt.Fprintf(&b, "Type: %s\n", t.Type)
	if t.Party != "" && t.Party != "-" {
		fmt.Fprintf(&b, "Party: %s\n", t.Party)
	}
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	fmt.Fprintf(&b, "Reference: %s\n", t.Reference)
	fmt.Fprintf(&b, "Balance after: %s", kes(t.BalanceCents))
	return b.String()
}

// datedItem renders one numbered "date - amount" list entry.
func datedItem(i int, t core.Transaction) string {
	return fmt.Sprintf("%d. %s - %s\n   %s\n\n", i+1, t.Date, kes(t.AmountCents), t.Description)
}

// timedItem is the longer per-transaction entry used by counterparty
// listings.
func timedItem(i int, t core.Transaction) string {
	return fmt.Sprintf("%d. %s at %s\n   Amount: %s\n   %s\n   Balance after: %s\n\n",
		i+1, t.Date, t.Time, kes(t.AmountCents), t.Description, kes(t.BalanceCents))
}
