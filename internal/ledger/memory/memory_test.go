package memory

import (
	"context"
	"testing"

	"mledger/internal/core"
)

func TestStoreReplaceWholesale(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := []core.Transaction{
		{Description: "Received from NCBA", AmountCents: 1000, Category: core.CategoryIncome},
		{Description: "Airtime purchase", AmountCents: 200, Category: core.CategoryExpense},
	}
	id, err := store.ReplaceStatement(ctx, "february.pdf", first)
	if err != nil {
		t.Fatalf("ReplaceStatement failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	second := []core.Transaction{
		{Description: "Send Money to John", AmountCents: 500, Category: core.CategoryExpense},
	}
	if _, err := store.ReplaceStatement(ctx, "march.pdf", second); err != nil {
		t.Fatalf("ReplaceStatement failed: %v", err)
	}

	txns, err := store.ActiveTransactions(ctx)
	if err != nil {
		t.Fatalf("ActiveTransactions failed: %v", err)
	}
	if len(txns) != 1 || txns[0].Description != "Send Money to John" {
		t.Errorf("replace was not wholesale: %+v", txns)
	}
	if store.StatementName() != "march.pdf" {
		t.Errorf("statement name = %q, want march.pdf", store.StatementName())
	}
}

func TestStoreIsolation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	txns := []core.Transaction{{Description: "original", AmountCents: 100}}
	if _, err := store.ReplaceStatement(ctx, "a.pdf", txns); err != nil {
		t.Fatalf("ReplaceStatement failed: %v", err)
	}

	txns[0].Description = "mutated"
	got, _ := store.ActiveTransactions(ctx)
	if got[0].Description != "original" {
		t.Error("store shares memory with the caller's slice")
	}

	got[0].Description = "mutated again"
	again, _ := store.ActiveTransactions(ctx)
	if again[0].Description != "original" {
		t.Error("reads share memory between callers")
	}
}
