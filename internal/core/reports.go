package core

import (
	"sort"
	"strconv"
	"strings"
)

// dateYearMonth splits a YYYY-MM-DD date. Malformed dates are skipped by the
// report walkers rather than failing the whole report.
func dateYearMonth(date string) (year, month int, ok bool) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// MonthlyReport sums one calendar month. Outflow combines expenses and
// charges, matching how the summary view reads.
type MonthlyReport struct {
	Year              int
	Month             int
	TotalIncomeCents  int64
	TotalOutflowCents int64
	TransactionCount  int
}

func (s *Snapshot) MonthlyTotals(year, month int) MonthlyReport {
	rep := MonthlyReport{Year: year, Month: month}
	if s == nil {
		return rep
	}
	for _, t := range s.txns {
		y, m, ok := dateYearMonth(t.Date)
		if !ok || y != year || m != month {
			continue
		}
		rep.TransactionCount++
		switch t.Category {
		case CategoryIncome:
			rep.TotalIncomeCents += t.AmountCents
		case CategoryExpense, CategoryCharge:
			rep.TotalOutflowCents += t.AmountCents
		}
	}
	return rep
}

// CategoryBreakdown buckets all outflow (expenses and charges) into spending
// categories for the chart view, sorted by amount descending. Empty buckets
// are dropped.
type CategoryBreakdown struct {
	TotalOutflowCents int64
	Categories        []CategoryAmount
}

var breakdownBuckets = []struct {
	name  string
	match func(desc, typ string) bool
}{
	{"Airtime", func(desc, typ string) bool {
		return strings.Contains(desc, "airtime") || strings.Contains(typ, "airtime")
	}},
	{"M-Shwari", func(desc, typ string) bool {
		return strings.Contains(stripJoin(desc), "mshwari") || strings.Contains(stripJoin(typ), "mshwari")
	}},
	{"Withdrawals", func(desc, typ string) bool {
		return strings.Contains(desc, "withdraw") || strings.Contains(typ, "withdraw")
	}},
	{"Bills & Utilities", func(desc, typ string) bool {
		return strings.Contains(desc, "paybill") || strings.Contains(desc, "pay bill")
	}},
	{"Shopping", func(desc, typ string) bool {
		return strings.Contains(desc, "buy goods")
	}},
	{"Send Money", func(desc, typ string) bool {
		return strings.Contains(desc, "send money") || strings.Contains(desc, "sent to")
	}},
}

func (s *Snapshot) CategoryTotals() CategoryBreakdown {
	var out CategoryBreakdown
	if s == nil {
		return out
	}

	buckets := make(map[string]int64)
	for _, t := range s.txns {
		if t.Category != CategoryExpense && t.Category != CategoryCharge {
			continue
		}
		out.TotalOutflowCents += t.AmountCents

		desc := strings.ToLower(t.Description)
		typ := strings.ToLower(t.Type)
		name := "Other"
		for _, b := range breakdownBuckets {
			if b.match(desc, typ) {
				name = b.name
				break
			}
		}
		buckets[name] += t.AmountCents
	}

	for _, b := range breakdownBuckets {
		if cents := buckets[b.name]; cents > 0 {
			out.Categories = append(out.Categories, CategoryAmount{Name: b.name, AmountCents: cents})
		}
	}
	if cents := buckets["Other"]; cents > 0 {
		out.Categories = append(out.Categories, CategoryAmount{Name: "Other", AmountCents: cents})
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].AmountCents > out.Categories[j].AmountCents
	})
	return out
}

// YearlyReport sums one calendar year. The monthly average spreads total
// activity over the months that saw any, not over all twelve.
type YearlyReport struct {
	Year                int
	TotalIncomeCents    int64
	TotalOutflowCents   int64
	MonthlyAverageCents int64
	ActiveMonths        int
}

func (s *Snapshot) YearlyTotals(year int) YearlyReport {
	rep := YearlyReport{Year: year}
	if s == nil {
		return rep
	}

	months := make(map[int]bool)
	for _, t := range s.txns {
		y, m, ok := dateYearMonth(t.Date)
		if !ok || y != year {
			continue
		}
		months[m] = true
		switch t.Category {
		case CategoryIncome:
			rep.TotalIncomeCents += t.AmountCents
		case CategoryExpense, CategoryCharge:
			rep.TotalOutflowCents += t.AmountCents
		}
	}

	rep.ActiveMonths = len(months)
	if rep.ActiveMonths > 0 {
		rep.MonthlyAverageCents = (rep.TotalIncomeCents + rep.TotalOutflowCents) / int64(rep.ActiveMonths)
	}
	return rep
}
