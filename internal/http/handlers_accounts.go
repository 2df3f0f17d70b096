package http

import (
	"net/http"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/services"
)

type createAccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	InitialBalance int64  `json:"initial_balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	acct, err := s.svc.Accounts.CreateAccount(r.Context(), services.CreateAccountParams{
		Name:           req.Name,
		Type:           core.AccountType(req.Type),
		InitialBalance: core.Money(req.InitialBalance),
		ProjectID:      r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusCreated, toAccountResponse(*acct))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.ListAccounts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleAttachAccount(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Accounts.AttachAccount(r.Context(), r.PathValue("id"), r.PathValue("accountID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.svc.Accounts.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, toAccountResponse(*acct))
}

type editAccountRequest struct {
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	InitialBalance *int64  `json:"initial_balance"`
}

func (s *Server) handleEditAccount(w http.ResponseWriter, r *http.Request) {
	var req editAccountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	patch := services.AccountPatch{Name: req.Name}
	if req.Type != nil {
		t := core.AccountType(*req.Type)
		patch.Type = &t
	}
	if req.InitialBalance != nil {
		v := core.Money(*req.InitialBalance)
		patch.InitialBalance = &v
	}
	acct, err := s.svc.Accounts.EditAccount(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusOK, toAccountResponse(*acct))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}
