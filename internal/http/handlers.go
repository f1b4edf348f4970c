package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mledger/internal/assistant"
	"mledger/internal/core"
)

const maxStatementBytes = 10 << 20

type indexSummary struct {
	Income       string
	Expenses     string
	Charges      string
	Net          string
	IncomeCount  int
	ExpenseCount int
	ChargeCount  int
}

type indexRow struct {
	Date        string
	Time        string
	Type        string
	Party       string
	Description string
	Amount      string
	Balance     string
	Category    string
}

type indexData struct {
	HasData      bool
	Summary      indexSummary
	Transactions []indexRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot(r.Context())

	data := indexData{HasData: !snap.Empty()}
	if data.HasData {
		sum := snap.Summarize()
		data.Summary = indexSummary{
			Income:       "KES " + core.FormatAmount(sum.TotalIncomeCents),
			Expenses:     "KES " + core.FormatAmount(sum.TotalExpenseCents),
			Charges:      "KES " + core.FormatAmount(sum.TotalChargeCents),
			Net:          "KES " + core.FormatAmount(sum.NetBalanceCents),
			IncomeCount:  sum.IncomeCount,
			ExpenseCount: sum.ExpenseCount,
			ChargeCount:  sum.ChargeCount,
		}
		for _, t := range snap.Transactions() {
			data.Transactions = append(data.Transactions, indexRow{
				Date:        t.Date,
				Time:        t.Time,
				Type:        t.Type,
				Party:       t.Party,
				Description: t.Description,
				Amount:      "KES " + core.FormatAmount(t.AmountCents),
				Balance:     "KES " + core.FormatAmount(t.BalanceCents),
				Category:    string(t.Category),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render index", "error", err)
	}
}

func (s *Server) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "statement uploads are disabled", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxStatementBytes)

	name := "statement.txt"
	var text string
	if file, header, err := r.FormFile("statement"); err == nil {
		defer file.Close()
		body, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		name = header.Filename
		text = string(body)
	} else {
		text = r.FormValue("text")
	}

	if strings.TrimSpace(text) == "" {
		http.Error(w, "empty statement", http.StatusBadRequest)
		return
	}

	count, err := s.service.Ingest(r.Context(), name, text)
	if err != nil {
		if errors.Is(err, core.ErrEmptyStatement) {
			http.Error(w, "could not find any transactions in the statement", http.StatusUnprocessableEntity)
			return
		}
		slog.ErrorContext(r.Context(), "Statement ingest failed", "name", name, "error", err)
		http.Error(w, "failed to store statement", http.StatusInternalServerError)
		return
	}

	if err := s.RefreshSnapshot(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Snapshot refresh after upload failed", "error", err)
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, map[string]any{"name": name, "transactions": count})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snap := s.currentSnapshot(r.Context())
	answer, err := s.responder.Respond(r.Context(), snap, req.Question)
	if err != nil {
		// Client went away while the answer was being "typed".
		return
	}
	if strings.TrimSpace(answer) == "" {
		answer = assistant.NoResponse
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		http.Error(w, "month must be between 1 and 12", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("monthly:%d:%d:%d", s.generation.Load(), year, month)
	s.serveReport(w, r, key, func(snap *core.Snapshot) any {
		rep := snap.MonthlyTotals(year, month)
		return map[string]any{
			"year":              rep.Year,
			"month":             rep.Month,
			"total_income":      centsToUnits(rep.TotalIncomeCents),
			"total_outflow":     centsToUnits(rep.TotalOutflowCents),
			"transaction_count": rep.TransactionCount,
		}
	})
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	key := fmt.Sprintf("category:%d", s.generation.Load())
	s.serveReport(w, r, key, func(snap *core.Snapshot) any {
		breakdown := snap.CategoryTotals()
		categories := make([]map[string]any, 0, len(breakdown.Categories))
		for _, c := range breakdown.Categories {
			categories = append(categories, map[string]any{
				"name":   c.Name,
				"amount": centsToUnits(c.AmountCents),
			})
		}
		return map[string]any{
			"total_outflow": centsToUnits(breakdown.TotalOutflowCents),
			"categories":    categories,
		}
	})
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().Year())

	key := fmt.Sprintf("yearly:%d:%d", s.generation.Load(), year)
	s.serveReport(w, r, key, func(snap *core.Snapshot) any {
		rep := snap.YearlyTotals(year)
		return map[string]any{
			"year":            rep.Year,
			"total_income":    centsToUnits(rep.TotalIncomeCents),
			"total_outflow":   centsToUnits(rep.TotalOutflowCents),
			"monthly_average": centsToUnits(rep.MonthlyAverageCents),
			"active_months":   rep.ActiveMonths,
		}
	})
}

// serveReport caches marshaled report payloads keyed by snapshot generation,
// so repeated chart loads skip recomputation until the next upload.
func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, key string, build func(*core.Snapshot) any) {
	if cached, ok := s.reportCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	payload, err := json.Marshal(build(s.currentSnapshot(r.Context())))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal report", "key", key, "error", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	s.reportCache.Set(key, payload)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ActiveTransactions(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
