package http

import (
	"net/http"

	"budgetd/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	account, err := s.accounts.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var cmd core.AccountCommand
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	account, err := s.accounts.Create(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, toAccountResponse(core.AccountBalance{
		Account: account,
		Balance: cmd.Balance,
	}))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenameAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.accounts.Rename(r.Context(), id, req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.accounts.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusNoContent, nil)
}
