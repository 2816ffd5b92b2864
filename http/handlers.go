package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"rinha/db"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves the pessoa routes.
type Handler struct {
	repo db.Repository
}

func New(repo db.Repository) *Handler {
	return &Handler{repo: repo}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps repository failures to a status. Nothing is written once the client is gone.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		return
	}

	var apelidoErr *db.ApelidoError
	switch {
	case errors.Is(err, db.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.As(err, &apelidoErr):
		w.WriteHeader(http.StatusUnprocessableEntity)
	case errors.Is(err, context.DeadlineExceeded):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handler) GetPessoa(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pessoa, err := h.repo.FindById(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	writeJSON(w, http.StatusOK, pessoa.ToPessoa())
}

func (h *Handler) GetPessoas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	// t= is a valid, empty term
	if !query.Has("t") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	searchTerm := query.Get("t")

	pessoas, err := h.repo.Search(r.Context(), searchTerm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	writeJSON(w, http.StatusOK, db.ToPessoas(pessoas))
}

func (h *Handler) CreatePessoa(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var input PessoaInput
	if err := json.Unmarshal(body, &input); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	nova, err := ValidatePessoa(input)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	pessoa, err := h.repo.Insert(r.Context(), nova)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/pessoas/%s", pessoa.Id))
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) GetPessoaCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	writeJSON(w, http.StatusOK, count)
}
