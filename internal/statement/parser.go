// Package statement parses OCR'd M-PESA statement text into transactions.
// The input is noisy: lines the pattern cannot read are skipped, amounts
// that fail to parse become zero, and only a completely empty result is an
// error.
package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"mledger/internal/core"
)

// One statement line: date, time, free-text details, an optional type word,
// the amount and an optional running balance.
var linePattern = regexp.MustCompile(
	`(?i)(\d{2}/\d{2}/\d{4})\s+` +
		`(\d{2}:\d{2})\s+` +
		`(.+?)\s+` +
		`(Sent|Received|Charge|Withdrawal Fee)?\s*` +
		`Ksh\s*([\d,]+(?:\.\d+)?)\s*` +
		`(?:Balance[:\s]+Ksh\s*([\d,]+(?:\.\d+)?))?`)

// Receipt numbers lead the details text on clean scans.
var referencePattern = regexp.MustCompile(`^([A-Z0-9]{10})\s+`)

var partyPattern = regexp.MustCompile(`(?i)\s(?:to|from)\s+(.+)$`)

// Parse extracts every readable transaction from statement text, preserving
// line order. It returns core.ErrEmptyStatement when nothing matched.
func Parse(text string) ([]core.Transaction, error) {
	matches := linePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, core.ErrEmptyStatement
	}

	txns := make([]core.Transaction, 0, len(matches))
	for _, m := range matches {
		dateStr, timeStr, details, typeWord, amountStr, balanceStr := m[1], m[2], m[3], m[4], m[5], m[6]

		typeWord = strings.ToLower(strings.TrimSpace(typeWord))
		if typeWord == "" {
			typeWord = "charge"
		}

		details = strings.TrimSpace(details)
		reference := "-"
		if rm := referencePattern.FindStringSubmatch(details); rm != nil {
			reference = rm[1]
			details = strings.TrimSpace(details[len(rm[0]):])
		}

		party := "-"
		if pm := partyPattern.FindStringSubmatch(details); pm != nil {
			party = strings.TrimSpace(pm[1])
		}

		txns = append(txns, core.Transaction{
			Date:         normalizeDate(dateStr),
			Time:         timeStr,
			Reference:    reference,
			Type:         typeWord,
			Party:        party,
			Description:  details,
			AmountCents:  core.ParseAmountCents(amountStr),
			Category:     classify(typeWord),
			BalanceCents: core.ParseAmountCents(balanceStr),
		})
	}
	return txns, nil
}

// classify maps the statement type word to the coarse category. Anything
// that is not an explicit send or receive is treated as a charge, matching
// how the statements label fees.
func classify(typeWord string) core.Category {
	switch typeWord {
	case "received":
		return core.CategoryIncome
	case "sent":
		return core.CategoryExpense
	}
	return core.CategoryCharge
}

// normalizeDate converts the statement's DD/MM/YYYY dates to YYYY-MM-DD so
// they sort and group lexically. Unparseable dates pass through untouched.
func normalizeDate(raw string) string {
	parsed, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return raw
	}
	return parsed.Format("2006-01-02")
}

// Summary of a parse for logging.
func Describe(txns []core.Transaction) string {
	var income, expense, charge int
	for _, t := range txns {
		switch t.Category {
		case core.CategoryIncome:
			income++
		case core.CategoryExpense:
			expense++
		case core.CategoryCharge:
			charge++
		}
	}
	return fmt.Sprintf("%d transactions (%d income, %d expense, %d charge)",
		len(txns), income, expense, charge)
}
