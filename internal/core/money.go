package core

import (
	"strconv"
	"strings"
)

// ParseAmountCents parses a statement amount like "1,234" or "1234.50" into
// cents. Commas, signs and whitespace are stripped first. Unparseable input
// yields 0 rather than an error: statement OCR noise must not abort a whole
// upload.
func ParseAmountCents(raw string) int64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0
	}

	var frac int64
	if fracPart != "" {
		if len(fracPart) > 2 {
			fracPart = fracPart[:2]
		}
		for len(fracPart) < 2 {
			fracPart += "0"
		}
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0
		}
	}

	return whole*100 + frac
}

// FormatAmount renders cents as a display amount with thousands separators
// and exactly two decimals, e.g. 123456789 -> "1,234,567.89".
func FormatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
		if len(whole) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(whole); i += 3 {
		b.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			b.WriteByte(',')
		}
	}

	b.WriteByte('.')
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		b.WriteByte('0')
	}
	b.WriteString(frac)
	return b.String()
}
