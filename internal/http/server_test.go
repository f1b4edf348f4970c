package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mledger/internal/assistant"
	"mledger/internal/core"
	"mledger/internal/ledger/memory"
	"mledger/internal/services"
)

func newTestServer(t *testing.T, txns []core.Transaction) (*Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	if txns != nil {
		if _, err := store.ReplaceStatement(context.Background(), "test.pdf", txns); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	svc := services.NewStatementService(store, nil)
	responder := &assistant.Responder{} // no delay in tests
	s, err := NewServer("127.0.0.1:0", store, svc, responder, Options{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s, store
}

func chatTransactions() []core.Transaction {
	return []core.Transaction{
		{Date: "2024-03-15", Time: "14:30", Reference: "SCF1KQXT2B", Type: "received", Party: "NCBA Bank", Description: "Received from NCBA Bank", AmountCents: 100000, Category: core.CategoryIncome, BalanceCents: 120000},
		{Date: "2024-03-14", Time: "09:12", Reference: "SCE9PLMN0A", Type: "sent", Party: "John Mwangi", Description: "Send Money to John Mwangi", AmountCents: 50000, Category: core.CategoryExpense, BalanceCents: 70000},
	}
}

func postChat(t *testing.T, s *Server, question string) (int, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"question": question})
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return rec.Code, rec.Body.String()
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode chat response: %v", err)
	}
	return rec.Code, resp.Answer
}

func TestChatEndpoint(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	code, answer := postChat(t, s, "What's my total income?")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if want := "Your total income is KES 1,000.00 from 1 transactions."; answer != want {
		t.Errorf("answer = %q, want %q", answer, want)
	}
}

func TestChatNoResponse(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	_, answer := postChat(t, s, "What's the weather like?")
	if answer != "No response." {
		t.Errorf("unmatched question should answer %q, got %q", "No response.", answer)
	}
}

func TestChatEmptyStore(t *testing.T) {
	s, _ := newTestServer(t, nil)

	_, answer := postChat(t, s, "What's my balance?")
	if !strings.Contains(answer, "I don't see any transactions yet") {
		t.Errorf("empty store answer = %q", answer)
	}
}

func TestChatInvalidBody(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadStatementRefreshesSnapshot(t *testing.T) {
	s, _ := newTestServer(t, nil)

	form := url.Values{"text": {"15/03/2024 14:30 SCF1KQXT2B Funds received from NCBA Bank Received Ksh 2,500 Balance: Ksh 3,000"}}
	req := httptest.NewRequest(http.MethodPost, "/statements", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}

	_, answer := postChat(t, s, "What's my total income?")
	if want := "Your total income is KES 2,500.00 from 1 transactions."; answer != want {
		t.Errorf("answer after upload = %q, want %q", answer, want)
	}
}

func TestUploadUnreadableStatement(t *testing.T) {
	s, _ := newTestServer(t, nil)

	form := url.Values{"text": {"nothing that parses"}}
	req := httptest.NewRequest(http.MethodPost, "/statements", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestIndexRendersTable(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"John Mwangi", "KES 1,000.00", `data-category="expense"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index should contain %q", want)
		}
	}
}

func TestMonthlyReport(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	req := httptest.NewRequest(http.MethodGet, "/reports/monthly?year=2024&month=3", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var rep struct {
		TotalIncome      float64 `json:"total_income"`
		TotalOutflow     float64 `json:"total_outflow"`
		TransactionCount int     `json:"transaction_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if rep.TotalIncome != 1000 || rep.TotalOutflow != 500 || rep.TransactionCount != 2 {
		t.Errorf("report = %+v", rep)
	}

	// Second request comes from the cache and must match.
	rec2 := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/reports/monthly?year=2024&month=3", nil))
	if rec2.Body.String() != rec.Body.String() {
		t.Error("cached report differs from the first response")
	}
}

func TestMonthlyReportBadMonth(t *testing.T) {
	s, _ := newTestServer(t, chatTransactions())

	req := httptest.NewRequest(http.MethodGet, "/reports/monthly?year=2024&month=13", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("fourth request in the window should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients have their own window")
	}
}
