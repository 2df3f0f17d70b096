package http

import (
	"net/http"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/services"
)

type createTransactionRequest struct {
	Value         int64    `json:"value"`
	Description   string   `json:"description"`
	Date          string   `json:"date"`
	Tags          []string `json:"tags"`
	SourceID      string   `json:"source_account_id"`
	DestinationID string   `json:"destination_account_id"`
	CategoryID    string   `json:"category_id"`
}

// handleCreateTransaction records a transaction. The response carries the
// primary row; the counterpart is created alongside it and visible via the
// shared pair id.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	primary, _, err := s.svc.Ledger.CreateTransaction(r.Context(), services.CreateTransactionParams{
		Value:         core.Money(req.Value),
		Description:   req.Description,
		Date:          day,
		Tags:          req.Tags,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		CategoryID:    req.CategoryID,
		ProjectID:     r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusCreated, toTransactionResponse(*primary))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	txns, err := s.svc.Ledger.ListTransactions(r.Context(), month, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, toTransactionResponse(*t))
}

// handleEditTransaction replaces the editable fields of a primary
// transaction. The counterpart is recomputed by the engine.
func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	value := core.Money(req.Value)
	patch := services.TransactionPatch{
		Value:       &value,
		Description: &req.Description,
		Date:        &day,
		Tags:        &req.Tags,
		CategoryID:  &req.CategoryID,
	}
	// Omitted endpoints keep their current accounts.
	if req.SourceID != "" {
		patch.SourceID = &req.SourceID
	}
	if req.DestinationID != "" {
		patch.DestinationID = &req.DestinationID
	}
	primary, err := s.svc.Ledger.EditTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusOK, toTransactionResponse(*primary))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}
