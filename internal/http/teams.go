package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gearguard/api/internal/team"
)

// ListTeams lista todas as equipes.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	WriteJSON(w, http.StatusOK, teams)
}

// GetTeam busca equipe por id.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	item, err := h.teams.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	WriteJSON(w, http.StatusOK, item)
}

// ListTeamMembers lista os membros de uma equipe.
func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	members, err := h.users.ListByTeam(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	WriteJSON(w, http.StatusOK, members)
}

// CreateTeam registra uma nova equipe.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string     `json:"name"`
		Description *string    `json:"description"`
		LeaderID    *uuid.UUID `json:"leader_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.teams.Create(r.Context(), team.CreateTeamInput{
		Name:        payload.Name,
		Description: payload.Description,
		LeaderID:    payload.LeaderID,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}
