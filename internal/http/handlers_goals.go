package http

import (
	"fmt"
	"net/http"
	"strings"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

type goalResponse struct {
	core.Goal
	ledger.GoalProgress
}

func newGoalResponse(g core.Goal) goalResponse {
	return goalResponse{Goal: g, GoalProgress: ledger.Progress(g)}
}

// handleListGoals lists goals with their progress, optionally by status.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	status := core.GoalStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case "", core.GoalActive, core.GoalCompleted:
	default:
		s.writeError(w, r, log.OpList, fmt.Errorf("%w %q", core.ErrInvalidStatus, status))
		return
	}

	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	goals := ledger.FilterGoals(snap.Goals, status)
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalResponse(g))
	}
	writeJSON(w, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	g := core.Goal{Name: p.Get("name"), Icon: p.Get("icon")}
	target, err := p.Amount("target_amount", "target")
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	g.Target = target
	if p.Has("current_amount") {
		current, err := p.SignedAmount("current_amount")
		if err != nil {
			s.writeError(w, r, log.OpCreate, err)
			return
		}
		g.Current = current
	}
	if g.Deadline, err = p.Date("deadline", core.Date{}); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	created, err := s.ledger.CreateGoal(r.Context(), uid, g)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityGoal, services.OpCreate, created.ID)
	NewJSONResponse().Created(newGoalResponse(created)).Write(w)
}

// handleAddSavings adds a positive contribution to a goal.
func (s *Server) handleAddSavings(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Amount("amount")
	if err != nil {
		s.writeError(w, r, log.OpSave, err)
		return
	}

	id := r.PathValue("id")
	g, err := s.ledger.AddSavings(r.Context(), uid, id, amount)
	if err != nil {
		s.writeError(w, r, log.OpSave, err)
		return
	}
	s.logger.LogMovement(r.Context(), uid, core.EntityGoal, log.OpSave, g.ID, amount.String())
	writeJSON(w, newGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.DeleteGoal(r.Context(), uid, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityGoal, services.OpDelete, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
