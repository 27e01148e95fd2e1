package http

import (
	"net/http"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

const maxChartDays = 366

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, services.BuildDashboard(snap, s.ledger.Today()))
}

// handleSummary totals income and expense, optionally within [start, end].
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := queryDate(q, "start", core.Date{})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	end, err := queryDate(q, "end", core.Date{})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, ledger.SummarizeRange(snap.Transactions, start, end))
}

// handleDaily returns one bucket per day for the window ending at ref.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, err := queryType(q, core.Expense)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	ref, err := queryDate(q, "ref", s.ledger.Today())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	days := min(max(queryInt(q, "days", 7), 1), maxChartDays)

	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, ledger.DailyBuckets(snap.Transactions, typ, days, ref))
}

type monthlyResponse struct {
	Year         int                        `json:"year"`
	Type         core.TransactionType       `json:"type"`
	Months       []ledger.MonthBucket       `json:"months"`
	YearOverYear []ledger.YearOverYearPoint `json:"year_over_year"`
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, err := queryType(q, core.Expense)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	year := queryInt(q, "year", s.ledger.Today().Year())

	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, monthlyResponse{
		Year:         year,
		Type:         typ,
		Months:       ledger.MonthlyBuckets(snap.Transactions, typ, year),
		YearOverYear: ledger.YearOverYear(snap.Transactions, typ, year),
	})
}

// handleCategoryBreakdown defaults to this month's expenses.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := s.ledger.Today()
	typ, err := queryType(q, core.Expense)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	start, err := queryDate(q, "start", today.FirstOfMonth())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	end, err := queryDate(q, "end", today)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}

	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, ledger.CategoryBreakdown(snap.Transactions, typ, start, end))
}
