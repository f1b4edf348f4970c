package assistant

import (
	"regexp"
	"strings"

	"mledger/internal/core"
)

// Counterparty name patterns, most specific first. Matching stops at the
// first hit, so the explicit "total received from" forms must precede the
// generic "from" and "with" forms or those would swallow them.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total\s+amount\s+(?:i\s+)?received\s+from|total\s+(?:i\s+)?received\s+from)\s+([a-z0-9\s\-\.]+?)(?:\s|$|\?)`),
	regexp.MustCompile(`(?i)(?:total\s+amount\s+(?:i\s+)?sent\s+to|total\s+(?:i\s+)?sent\s+to|total\s+(?:i\s+)?paid\s+to)\s+([a-z0-9\s\-\.]+?)(?:\s|$|\?)`),
	regexp.MustCompile(`(?i)(?:sent to|send to|paid to|pay to|transferred to|transfer to)\s+([a-z0-9\s\-\.]+?)(?:\s|$|\?)`),
	regexp.MustCompile(`(?i)(?:received from|got from|from)\s+([a-z0-9\s\-\.]+?)(?:\s|$|\?)`),
	regexp.MustCompile(`(?i)(?:transactions with|transaction with|with)\s+([a-z0-9\s\-\.]+?)(?:\s|$|\?)`),
}

// ExtractName returns the counterparty named in the question, or "" when no
// pattern matches. The lazy capture stops at the first word boundary, so
// multi-word names resolve to their first word; substring matching downstream
// still finds the right transactions.
func ExtractName(question string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(question); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractDirection maps question phrasing to a flow restriction. The cascade
// is ordered: the explicit "received from"/"got from" forms win over the
// generic sent words, which win over the generic received words. Questions
// with no direction words get DirectionAll.
func ExtractDirection(question string) core.Direction {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "received from") || strings.Contains(q, "got from"):
		return core.DirectionReceived
	case strings.Contains(q, "sent to") || strings.Contains(q, "paid to") || strings.Contains(q, "transferred to"):
		return core.DirectionSent
	case strings.Contains(q, "sent") || strings.Contains(q, "paid") ||
		strings.Contains(q, "transferred") || strings.Contains(q, "send"):
		return core.DirectionSent
	case strings.Contains(q, "received") || strings.Contains(q, "got"):
		return core.DirectionReceived
	}
	return core.DirectionAll
}
