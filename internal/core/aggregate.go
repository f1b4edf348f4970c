package core

import (
	"sort"
	"strings"
)

// stripJoin removes spaces and hyphens so "M-Shwari", "m shwari" and
// "mshwari" all compare equal.
func stripJoin(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// MatchesParty reports whether the transaction involves the search term. The
// term matches as a case-insensitive substring of party, description, type or
// reference; party, description and type are additionally compared with
// spaces and hyphens stripped from both sides.
func (t Transaction) MatchesParty(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}

	party := strings.ToLower(t.Party)
	desc := strings.ToLower(t.Description)
	typ := strings.ToLower(t.Type)
	ref := strings.ToLower(t.Reference)
	if strings.Contains(party, term) || strings.Contains(desc, term) ||
		strings.Contains(typ, term) || strings.Contains(ref, term) {
		return true
	}

	st := stripJoin(term)
	return strings.Contains(stripJoin(party), st) ||
		strings.Contains(stripJoin(desc), st) ||
		strings.Contains(stripJoin(typ), st)
}

// FilterByParty returns, in store order, the transactions involving the term
// under the given flow restriction. DirectionSent keeps expenses only,
// DirectionReceived keeps income only, DirectionAll keeps everything
// including charges.
func (s *Snapshot) FilterByParty(term string, dir Direction) []Transaction {
	var out []Transaction
	for _, t := range s.txns {
		if !t.MatchesParty(term) {
			continue
		}
		switch dir {
		case DirectionSent:
			if t.Category != CategoryExpense {
				continue
			}
		case DirectionReceived:
			if t.Category != CategoryIncome {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// FilterByCategory returns the transactions with the given coarse category,
// in store order.
func (s *Snapshot) FilterByCategory(cat Category) []Transaction {
	var out []Transaction
	for _, t := range s.txns {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

// FilterByKeyword returns the transactions whose description or type contains
// the keyword, case-insensitively, in store order.
func (s *Snapshot) FilterByKeyword(keyword string) []Transaction {
	keyword = strings.ToLower(keyword)
	var out []Transaction
	for _, t := range s.txns {
		if strings.Contains(strings.ToLower(t.Description), keyword) ||
			strings.Contains(strings.ToLower(t.Type), keyword) {
			out = append(out, t)
		}
	}
	return out
}

// SumAmounts totals the amounts of txns in cents.
func SumAmounts(txns []Transaction) int64 {
	var total int64
	for _, t := range txns {
		total += t.AmountCents
	}
	return total
}

// Highest returns the transaction with the strictly greatest amount. Ties
// keep the earliest candidate, so on equal amounts the transaction closest to
// the front of the store wins.
func Highest(txns []Transaction) (Transaction, bool) {
	if len(txns) == 0 {
		return Transaction{}, false
	}
	highest := txns[0]
	for _, t := range txns[1:] {
		if t.AmountCents > highest.AmountCents {
			highest = t
		}
	}
	return highest, true
}

// Largest returns the single largest transaction across the whole snapshot.
func (s *Snapshot) Largest() (Transaction, bool) {
	if s == nil {
		return Transaction{}, false
	}
	return Highest(s.txns)
}

// TopByAmount returns up to n transactions sorted by amount descending. The
// sort is stable, so equal amounts retain store order.
func TopByAmount(txns []Transaction, n int) []Transaction {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AmountCents > sorted[j].AmountCents
	})
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Recent returns the first n transactions in store order. The store is
// newest-first, so these are the most recent events.
func (s *Snapshot) Recent(n int) []Transaction {
	if s == nil || n <= 0 {
		return nil
	}
	if n > len(s.txns) {
		n = len(s.txns)
	}
	out := make([]Transaction, n)
	copy(out, s.txns[:n])
	return out
}
