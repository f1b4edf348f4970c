// Package assistant implements the rule-based engine that answers free-text
// questions about an M-PESA transaction snapshot. Questions run through
// entity extraction (counterparty name, flow direction, spending category)
// and then down an ordered rule table; the first matching rule renders the
// answer. The engine is total: it never returns an error, and questions no
// rule claims yield the empty string, which callers render as a fixed
// no-response line.
package assistant

import "mledger/internal/core"

const emptyStoreAnswer = "I don't see any transactions yet. Please upload an M-Pesa statement first, and I'll be able to help you analyze your finances!"

// NoResponse is what conversation surfaces show for an unmatched question.
const NoResponse = "No response."

// Assistant answers questions against one immutable snapshot, captured at
// construction. A store reload never changes answers mid-question; callers
// build a fresh Assistant per question.
type Assistant struct {
	snap *core.Snapshot
}

func New(snap *core.Snapshot) *Assistant {
	if snap == nil {
		snap = core.NewSnapshot(nil)
	}
	return &Assistant{snap: snap}
}

// Answer runs the question through the rule table and returns the rendered
// answer, or "" when no rule matches. An empty snapshot short-circuits every
// rule with the upload prompt.
func (a *Assistant) Answer(questionText string) string {
	if a.snap.Empty() {
		return emptyStoreAnswer
	}

	q := parseQuestion(questionText)
	for _, r := range rules {
		if r.match(q) {
			return r.answer(a.snap, q)
		}
	}
	return ""
}
