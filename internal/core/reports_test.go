package core

import "testing"

func reportTransactions() []Transaction {
	return []Transaction{
		{Date: "2024-03-15", AmountCents: 500000, Category: CategoryIncome},
		{Date: "2024-03-14", AmountCents: 40000, Category: CategoryExpense, Description: "Send Money to John"},
		{Date: "2024-03-14", AmountCents: 1300, Category: CategoryCharge, Description: "Send Money charge"},
		{Date: "2024-02-20", AmountCents: 100000, Category: CategoryIncome},
		{Date: "2024-02-18", AmountCents: 25000, Category: CategoryExpense, Description: "PayBill to KPLC"},
		{Date: "2023-12-01", AmountCents: 70000, Category: CategoryIncome},
		{Date: "not-a-date", AmountCents: 99999, Category: CategoryIncome},
	}
}

func TestMonthlyTotals(t *testing.T) {
	snap := NewSnapshot(reportTransactions())

	rep := snap.MonthlyTotals(2024, 3)
	if rep.TotalIncomeCents != 500000 {
		t.Errorf("march income = %d, want 500000", rep.TotalIncomeCents)
	}
	if rep.TotalOutflowCents != 41300 {
		t.Errorf("march outflow = %d, want 41300", rep.TotalOutflowCents)
	}
	if rep.TransactionCount != 3 {
		t.Errorf("march count = %d, want 3", rep.TransactionCount)
	}

	if rep := snap.MonthlyTotals(2024, 6); rep.TransactionCount != 0 {
		t.Errorf("empty month count = %d, want 0", rep.TransactionCount)
	}
}

func TestCategoryTotals(t *testing.T) {
	snap := NewSnapshot(reportTransactions())

	breakdown := snap.CategoryTotals()
	if breakdown.TotalOutflowCents != 66300 {
		t.Errorf("total outflow = %d, want 66300", breakdown.TotalOutflowCents)
	}
	if len(breakdown.Categories) == 0 {
		t.Fatal("expected at least one category bucket")
	}
	if breakdown.Categories[0].Name != "Send Money" || breakdown.Categories[0].AmountCents != 41300 {
		t.Errorf("largest bucket = %q (%d), want Send Money (41300)",
			breakdown.Categories[0].Name, breakdown.Categories[0].AmountCents)
	}
	for i := 1; i < len(breakdown.Categories); i++ {
		if breakdown.Categories[i].AmountCents > breakdown.Categories[i-1].AmountCents {
			t.Error("category buckets not sorted by amount descending")
		}
	}
}

func TestYearlyTotals(t *testing.T) {
	snap := NewSnapshot(reportTransactions())

	rep := snap.YearlyTotals(2024)
	if rep.TotalIncomeCents != 600000 {
		t.Errorf("2024 income = %d, want 600000", rep.TotalIncomeCents)
	}
	if rep.TotalOutflowCents != 66300 {
		t.Errorf("2024 outflow = %d, want 66300", rep.TotalOutflowCents)
	}
	if rep.ActiveMonths != 2 {
		t.Errorf("2024 active months = %d, want 2", rep.ActiveMonths)
	}
	if want := (rep.TotalIncomeCents + rep.TotalOutflowCents) / 2; rep.MonthlyAverageCents != want {
		t.Errorf("2024 monthly average = %d, want %d", rep.MonthlyAverageCents, want)
	}

	if rep := snap.YearlyTotals(2020); rep.MonthlyAverageCents != 0 {
		t.Errorf("empty year average = %d, want 0", rep.MonthlyAverageCents)
	}
}
