package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/user"
)

// ListUsers lista todos os usuários.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// GetUser busca usuário por id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	account, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	WriteJSON(w, http.StatusOK, account)
}

// CreateUser cadastra um novo usuário.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string       `json:"email"`
		Name     string       `json:"name"`
		Password string       `json:"password"`
		Role     session.Role `json:"role"`
		TeamID   *uuid.UUID   `json:"team_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.users.Create(r.Context(), user.CreateUserInput{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		Role:     payload.Role,
		TeamID:   payload.TeamID,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}
