package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gearguard/api/internal/equipment"
	httpmiddleware "github.com/gearguard/api/internal/http/middleware"
	"github.com/gearguard/api/internal/session"
)

// ListEquipment lista equipamentos com filtros opcionais.
func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	var filters equipment.Filters
	query := r.URL.Query()

	if val := query.Get("status"); val != "" {
		status := equipment.Status(val)
		if !equipment.ValidStatus(status) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "status inválido", nil)
			return
		}
		filters.Status = &status
	}
	if val := query.Get("team_id"); val != "" {
		teamID, err := uuid.Parse(val)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "team_id inválido", nil)
			return
		}
		filters.TeamID = &teamID
	}
	filters.Search = strings.TrimSpace(query.Get("search"))

	items, err := h.equipment.List(r.Context(), filters)
	if err != nil {
		h.handleEquipmentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, items)
}

// GetEquipment busca equipamento por id.
func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	item, err := h.equipment.Get(r.Context(), id)
	if err != nil {
		h.handleEquipmentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, item)
}

// CreateEquipment cadastra um novo equipamento.
func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string     `json:"name"`
		Description  *string    `json:"description"`
		Location     string     `json:"location"`
		TeamID       uuid.UUID  `json:"team_id"`
		SerialNumber *string    `json:"serial_number"`
		Manufacturer *string    `json:"manufacturer"`
		Model        *string    `json:"model"`
		PurchaseDate *time.Time `json:"purchase_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	created, err := h.equipment.Create(r.Context(), identity, equipment.CreateEquipmentInput{
		Name:         payload.Name,
		Description:  payload.Description,
		Location:     payload.Location,
		TeamID:       payload.TeamID,
		SerialNumber: payload.SerialNumber,
		Manufacturer: payload.Manufacturer,
		Model:        payload.Model,
		PurchaseDate: payload.PurchaseDate,
	})
	if err != nil {
		h.handleEquipmentError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// UpdateEquipment aplica atualização parcial.
func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Name        *string           `json:"name"`
		Description *string           `json:"description"`
		Location    *string           `json:"location"`
		Status      *equipment.Status `json:"status"`
		TeamID      *uuid.UUID        `json:"team_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	updated, err := h.equipment.Update(r.Context(), identity, id, equipment.UpdateEquipmentInput{
		Name:        payload.Name,
		Description: payload.Description,
		Location:    payload.Location,
		Status:      payload.Status,
		TeamID:      payload.TeamID,
	})
	if err != nil {
		h.handleEquipmentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleEquipmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, session.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, equipment.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, equipment.ErrInvalidStatus):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
