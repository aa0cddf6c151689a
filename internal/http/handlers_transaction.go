package http

import (
	"net/http"

	"budgetd/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.transactions.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionResponse, len(transactions))
	for i, t := range transactions {
		out[i] = toTransactionResponse(t)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	txn, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var cmd core.TransactionCommand
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	txn, err := s.transactions.Create(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var cmd core.TransactionCommand
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.transactions.Update(r.Context(), id, cmd); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusNoContent, nil)
}
