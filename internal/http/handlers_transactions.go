package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"dompet/internal/core"
	"dompet/internal/export"
	"dompet/internal/format"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

type dateGroupResponse struct {
	Date         core.Date          `json:"date"`
	Label        string             `json:"label"`
	Transactions []core.Transaction `json:"transactions"`
}

type transactionListResponse struct {
	Grouped     bool                `json:"grouped"`
	Flat        []core.Transaction  `json:"flat,omitempty"`
	Groups      []dateGroupResponse `json:"groups,omitempty"`
	Total       int                 `json:"total"`
	Visible     int                 `json:"visible"`
	HasMore     bool                `json:"has_more"`
	NextVisible int                 `json:"next_visible,omitempty"`
}

// handleListTransactions renders the filtered, sorted and paginated list.
// Pass next_visible back as visible to load one more page.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	q := r.URL.Query()
	view := ledger.ComposeView(snap.Transactions, ParseCriteria(q), ParseVisible(q, s.pageSize))
	today := s.ledger.Today()

	resp := transactionListResponse{
		Grouped: view.Grouped,
		Flat:    view.Flat,
		Total:   view.Total,
		Visible: view.Visible,
		HasMore: view.HasMore,
	}
	if view.Grouped {
		resp.Groups = make([]dateGroupResponse, 0, len(view.Groups))
		for _, g := range view.Groups {
			resp.Groups = append(resp.Groups, dateGroupResponse{
				Date:         g.Date,
				Label:        format.DayLabel(g.Date, today),
				Transactions: g.Transactions,
			})
		}
	}
	if view.HasMore {
		cursor := ledger.Cursor{PageSize: s.pageSize, Visible: view.Visible}
		resp.NextVisible = cursor.LoadMore()
	}
	writeJSON(w, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	t, err := s.transactionFromBody(p, core.Transaction{Date: s.ledger.Today()}, true)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.ledger.CreateTransaction(r.Context(), uid, t)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityTransaction, services.OpCreate, created.ID)
	NewJSONResponse().Created(created).Write(w)
}

// handleUpdateTransaction overlays the sent fields on the stored transaction.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	existing, err := s.ledger.Store().GetTransaction(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	t, err := s.transactionFromBody(p, existing, false)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	t.ID = id
	updated, err := s.ledger.UpdateTransaction(r.Context(), uid, t)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityTransaction, services.OpUpdate, updated.ID)
	writeJSON(w, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.DeleteTransaction(r.Context(), uid, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityTransaction, services.OpDelete, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// transactionFromBody applies the body to base. With full set every field
// is read; otherwise only the fields present are.
func (s *Server) transactionFromBody(p *RequestBodyParser, base core.Transaction, full bool) (core.Transaction, error) {
	t := base
	present := func(keys ...string) bool {
		if full {
			return true
		}
		for _, k := range keys {
			if p.Has(k) {
				return true
			}
		}
		return false
	}

	if present("type") {
		t.Type = core.TransactionType(strings.ToLower(p.Get("type")))
	}
	if present("amount") {
		amount, err := p.Amount("amount")
		if err != nil {
			return core.Transaction{}, err
		}
		t.Amount = amount
	}
	if present("date") {
		d, err := p.Date("date", base.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Date = d
	}
	if present("category_id", "category") {
		t.CategoryID = p.First("category_id", "category")
		t.CategoryName = ""
	}
	if present("wallet_id", "wallet") {
		t.WalletID = p.First("wallet_id", "wallet")
		t.WalletName = ""
	}
	if present("note") {
		t.Note = p.Get("note")
	}
	return t, nil
}

// handleExportCSV downloads every transaction matching the list filters.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}

	view := ledger.ComposeView(snap.Transactions, ParseCriteria(r.URL.Query()), 0)
	rows := view.Flat
	for _, g := range view.Groups {
		rows = append(rows, g.Transactions...)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dompet-%s.csv"`, s.ledger.Today()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
