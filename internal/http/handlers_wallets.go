package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

type walletListResponse struct {
	Wallets []services.WalletBalance `json:"wallets"`
	Total   decimal.Decimal          `json:"total"`
}

// handleListWallets returns each wallet with its derived balance.
func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	balances := ledger.WalletBalances(snap.Transactions, snap.Wallets)
	resp := walletListResponse{Wallets: make([]services.WalletBalance, 0, len(snap.Wallets)), Total: decimal.Zero}
	for _, wl := range snap.Wallets {
		resp.Wallets = append(resp.Wallets, services.WalletBalance{Wallet: wl, Balance: balances[wl.ID]})
		resp.Total = resp.Total.Add(balances[wl.ID])
	}
	writeJSON(w, resp)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	wallet := core.Wallet{
		ID:   strings.ToLower(p.Get("id")),
		Name: p.Get("name"),
		Icon: p.Get("icon"),
	}
	if p.Has("initial_balance") {
		initial, err := p.SignedAmount("initial_balance")
		if err != nil {
			s.writeError(w, r, log.OpCreate, err)
			return
		}
		wallet.InitialBalance = initial
	}

	created, err := s.ledger.CreateWallet(r.Context(), uid, wallet)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityWallet, services.OpCreate, created.ID)
	NewJSONResponse().Created(created).Write(w)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.DeleteWallet(r.Context(), uid, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityWallet, services.OpDelete, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type adjustResponse struct {
	Adjusted    bool              `json:"adjusted"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

// handleAdjustWallet forces a wallet's balance to the sent target by
// recording a reconciliation transaction. A target equal to the current
// balance records nothing.
func (s *Server) handleAdjustWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	target, err := p.SignedAmount("target")
	if err != nil {
		s.writeError(w, r, log.OpAdjust, err)
		return
	}

	walletID := r.PathValue("id")
	tx, adjusted, err := s.ledger.AdjustWalletBalance(r.Context(), uid, walletID, target)
	if err != nil {
		s.writeError(w, r, log.OpAdjust, err)
		return
	}
	if !adjusted {
		writeJSON(w, adjustResponse{})
		return
	}
	s.logger.LogMovement(r.Context(), uid, core.EntityTransaction, log.OpAdjust, tx.ID, tx.Signed().String())
	NewJSONResponse().Created(adjustResponse{Adjusted: true, Transaction: &tx}).Write(w)
}

// handleListCategories lists shared and own categories, optionally by type.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, err := queryType(q, "")
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	out := make([]core.Category, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		if typ == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	created, err := s.ledger.CreateCategory(r.Context(), uid, core.Category{
		ID:   strings.ToLower(p.Get("id")),
		Name: p.Get("name"),
		Type: core.TransactionType(strings.ToLower(p.Get("type"))),
		Icon: p.Get("icon"),
	})
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.LogMutation(r.Context(), uid, core.EntityCategory, services.OpCreate, created.ID)
	NewJSONResponse().Created(created).Write(w)
}
