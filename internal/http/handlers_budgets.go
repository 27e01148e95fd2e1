package http

import (
	"fmt"
	"net/http"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

type budgetListResponse struct {
	Budgets             []ledger.BudgetStatus `json:"budgets"`
	Totals              ledger.BudgetTotals   `json:"totals"`
	AvailableCategories []core.Category       `json:"available_categories"`
}

// handleListBudgets returns consumption for the current cycle of every
// budget plus the expense categories that could still get one.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	statuses := ledger.BudgetStatuses(snap.Budgets, snap.Transactions, s.ledger.Today())
	expenseCategories := make([]core.Category, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		if c.Type == core.Expense {
			expenseCategories = append(expenseCategories, c)
		}
	}
	writeJSON(w, budgetListResponse{
		Budgets:             statuses,
		Totals:              ledger.Totals(statuses),
		AvailableCategories: ledger.UnbudgetedCategories(expenseCategories, snap.Budgets),
	})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	b := core.Budget{CategoryID: p.First("category_id", "category")}
	if err := applyBudgetFields(p, &b); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.ledger.CreateBudget(r.Context(), uid, b)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityBudget, services.OpCreate, created.ID)
	NewJSONResponse().Created(created).Write(w)
}

// handleUpdateBudget overlays the sent fields on the stored budget.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	budgets, err := s.ledger.Store().ListBudgets(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	var b core.Budget
	for _, candidate := range budgets {
		if candidate.ID == id {
			b = candidate
		}
	}
	if b.ID == "" {
		s.writeError(w, r, log.OpUpdate, fmt.Errorf("budget %q: %w", id, core.ErrNotFound))
		return
	}

	if p.Has("category_id") || p.Has("category") {
		b.CategoryID = p.First("category_id", "category")
		b.CategoryName = ""
	}
	if err := applyBudgetFields(p, &b); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.ledger.UpdateBudget(r.Context(), uid, b)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityBudget, services.OpUpdate, updated.ID)
	writeJSON(w, updated)
}

func applyBudgetFields(p *RequestBodyParser, b *core.Budget) error {
	for _, key := range []string{"limit_amount", "limit"} {
		if p.Has(key) {
			limit, err := p.SignedAmount(key)
			if err != nil {
				return err
			}
			b.Limit = limit
			break
		}
	}
	if p.Has("cycle_start") {
		start, err := p.Date("cycle_start", b.CycleStart)
		if err != nil {
			return err
		}
		b.CycleStart = start
	}
	return nil
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.DeleteBudget(r.Context(), uid, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityBudget, services.OpDelete, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleResetBudgets restarts every budget's cycle from today.
func (s *Server) handleResetBudgets(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	start, err := s.ledger.ResetBudgetCycles(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, log.OpReset, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityBudget, services.OpReset, "")
	writeJSON(w, map[string]core.Date{"cycle_start": start})
}
