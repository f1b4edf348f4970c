package assistant

import "strings"

// categoryRule maps question keywords to the statement keyword searched for
// and the display name used in answers.
type categoryRule struct {
	cues    []string
	keyword string
	display string
}

// Fixed order, first match wins. "paybill" and "bill" share a rule so either
// phrasing lands on the same keyword; "m-shwari" sits last because its cues
// never collide with anything above.
var categoryRules = []categoryRule{
	{cues: []string{"airtime"}, keyword: "airtime", display: "Airtime"},
	{cues: []string{"withdraw"}, keyword: "withdraw", display: "Withdrawals"},
	{cues: []string{"paybill", "bill"}, keyword: "paybill", display: "Bills & PayBill"},
	{cues: []string{"buy goods", "shopping"}, keyword: "buy goods", display: "Buy Goods/Shopping"},
	{cues: []string{"send money", "transfer"}, keyword: "send money", display: "Send Money/Transfers"},
	{cues: []string{"m-shwari", "mshwari"}, keyword: "m-shwari", display: "M-Shwari"},
}

// MatchCategory returns the statement keyword and display name cued by the
// question, or empty strings when the question names no spending category.
func MatchCategory(question string) (keyword, display string) {
	q := strings.ToLower(question)
	for _, r := range categoryRules {
		for _, cue := range r.cues {
			if strings.Contains(q, cue) {
				return r.keyword, r.display
			}
		}
	}
	return "", ""
}
