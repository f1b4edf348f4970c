package core

import "strings"

// Expense sub-categories are a display-level refinement computed on the fly
// for summaries and reports. The coarse Category on each transaction never
// changes.
const (
	SubAirtime     = "Airtime"
	SubWithdrawals = "Withdrawals"
	SubBills       = "Bills"
	SubShopping    = "Shopping"
	SubTransfers   = "Transfers"
	SubOther       = "Other"
)

// Iteration order for sub-category buckets. Keeping it fixed makes the top
// sub-category deterministic when two buckets tie.
var expenseSubCategories = []string{
	SubAirtime, SubWithdrawals, SubBills, SubShopping, SubTransfers, SubOther,
}

// ExpenseSubCategory assigns a reporting sub-category from keyword matches
// over the description and type fields. First match wins.
func ExpenseSubCategory(t Transaction) string {
	desc := strings.ToLower(t.Description)
	typ := strings.ToLower(t.Type)
	switch {
	case strings.Contains(desc, "airtime") || strings.Contains(typ, "airtime"):
		return SubAirtime
	case strings.Contains(desc, "withdraw"):
		return SubWithdrawals
	case strings.Contains(desc, "paybill"):
		return SubBills
	case strings.Contains(desc, "buy goods"):
		return SubShopping
	case strings.Contains(desc, "send money"):
		return SubTransfers
	}
	return SubOther
}

// CategoryAmount is one named bucket in a breakdown.
type CategoryAmount struct {
	Name        string
	AmountCents int64
}

// Summary holds the per-category totals behind balance and overview answers.
type Summary struct {
	TotalIncomeCents  int64
	TotalExpenseCents int64
	TotalChargeCents  int64

	IncomeCount  int
	ExpenseCount int
	ChargeCount  int

	// NetBalanceCents = income - expenses - charges. May be negative.
	NetBalanceCents int64

	// BySubCategory lists expense sub-category totals in fixed order with
	// zero buckets omitted.
	BySubCategory []CategoryAmount

	// TopSubCategory is the strictly greatest expense bucket, "None" when
	// there are no expenses.
	TopSubCategory      string
	TopSubCategoryCents int64
}

// Summarize walks the snapshot once and returns the category totals.
func (s *Snapshot) Summarize() Summary {
	sum := Summary{TopSubCategory: "None"}
	buckets := make(map[string]int64)

	if s != nil {
		for _, t := range s.txns {
			switch t.Category {
			case CategoryIncome:
				sum.TotalIncomeCents += t.AmountCents
				sum.IncomeCount++
			case CategoryExpense:
				sum.TotalExpenseCents += t.AmountCents
				sum.ExpenseCount++
				buckets[ExpenseSubCategory(t)] += t.AmountCents
			case CategoryCharge:
				sum.TotalChargeCents += t.AmountCents
				sum.ChargeCount++
			}
		}
	}

	sum.NetBalanceCents = sum.TotalIncomeCents - sum.TotalExpenseCents - sum.TotalChargeCents

	for _, name := range expenseSubCategories {
		cents := buckets[name]
		if cents == 0 {
			continue
		}
		sum.BySubCategory = append(sum.BySubCategory, CategoryAmount{Name: name, AmountCents: cents})
		if cents > sum.TopSubCategoryCents {
			sum.TopSubCategory = name
			sum.TopSubCategoryCents = cents
		}
	}

	return sum
}
