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
	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/session"
)

// ListRequests lista chamados já estreitados pelo papel do usuário.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filters, err := parseRequestFilters(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	requests, err := h.requests.ListFor(r.Context(), identity, filters)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, requests)
}

// CreateRequest abre um novo chamado.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Subject       string           `json:"subject"`
		Description   *string          `json:"description"`
		Type          request.Type     `json:"type"`
		Priority      request.Priority `json:"priority"`
		EquipmentID   uuid.UUID        `json:"equipment_id"`
		AssignedToID  *uuid.UUID       `json:"assigned_to_id"`
		ScheduledDate *time.Time       `json:"scheduled_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	created, err := h.requests.Create(r.Context(), identity, request.CreateRequestInput{
		Subject:       payload.Subject,
		Description:   payload.Description,
		Type:          payload.Type,
		Priority:      payload.Priority,
		EquipmentID:   payload.EquipmentID,
		AssignedToID:  payload.AssignedToID,
		ScheduledDate: payload.ScheduledDate,
	})
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// GetRequest busca chamado por id.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, req)
}

// UpdateRequest aplica atualização parcial; status tem fluxo próprio e
// pode vir no mesmo payload.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Subject       *string           `json:"subject"`
		Description   *string           `json:"description"`
		Priority      *request.Priority `json:"priority"`
		AssignedToID  *uuid.UUID        `json:"assigned_to_id"`
		ScheduledDate *time.Time        `json:"scheduled_date"`
		Duration      *int              `json:"duration"`
		Notes         *string           `json:"notes"`
		Status        *request.Status   `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())

	var updated *request.MaintenanceRequest
	hasFields := payload.Subject != nil || payload.Description != nil || payload.Priority != nil ||
		payload.AssignedToID != nil || payload.ScheduledDate != nil || payload.Duration != nil ||
		payload.Notes != nil

	if hasFields {
		updated, err = h.requests.Update(r.Context(), identity, id, request.UpdateRequestInput{
			Subject:       payload.Subject,
			Description:   payload.Description,
			Priority:      payload.Priority,
			AssignedToID:  payload.AssignedToID,
			ScheduledDate: payload.ScheduledDate,
			Duration:      payload.Duration,
			Notes:         payload.Notes,
		})
		if err != nil {
			h.handleRequestError(w, err)
			return
		}
	}

	if payload.Status != nil {
		updated, err = h.requests.UpdateStatus(r.Context(), identity, id, *payload.Status)
		if err != nil {
			h.handleRequestError(w, err)
			return
		}
	}

	if updated == nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nenhum campo para atualizar", nil)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// RequestCalendar devolve chamados agendados no período.
func (h *Handler) RequestCalendar(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "start")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "start inválido", nil)
		return
	}
	to, err := parseDateParam(r, "end")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "end inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	calendarEvents, err := h.requests.CalendarEvents(r.Context(), identity, from, to)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, calendarEvents)
}

// ListEquipmentRequests lista o histórico de chamados de um equipamento.
func (h *Handler) ListEquipmentRequests(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	identity := httpmiddleware.IdentityFromContext(r.Context())
	requests, err := h.requests.ListFor(r.Context(), identity, request.Filters{EquipmentID: &id})
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) handleRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, session.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, request.ErrNotFound), errors.Is(err, equipment.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, equipment.ErrScrapped):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, request.ErrInvalidStatus),
		errors.Is(err, request.ErrInvalidType),
		errors.Is(err, request.ErrInvalidPriority):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

func parseRequestFilters(r *http.Request) (request.Filters, error) {
	var filters request.Filters
	query := r.URL.Query()

	if val := query.Get("status"); val != "" {
		status := request.Status(val)
		if !request.ValidStatus(status) {
			return filters, errors.New("status inválido")
		}
		filters.Status = &status
	}
	if val := query.Get("type"); val != "" {
		typ := request.Type(val)
		if !request.ValidType(typ) {
			return filters, errors.New("type inválido")
		}
		filters.Type = &typ
	}
	if val := query.Get("priority"); val != "" {
		priority := request.Priority(val)
		if !request.ValidPriority(priority) {
			return filters, errors.New("priority inválida")
		}
		filters.Priority = &priority
	}

	for param, target := range map[string]**uuid.UUID{
		"equipment_id":    &filters.EquipmentID,
		"team_id":         &filters.TeamID,
		"assigned_to_id":  &filters.AssignedToID,
		"requested_by_id": &filters.RequestedByID,
	} {
		if val := query.Get(param); val != "" {
			id, err := uuid.Parse(val)
			if err != nil {
				return filters, errors.New(param + " inválido")
			}
			*target = &id
		}
	}

	filters.Search = strings.TrimSpace(query.Get("search"))

	start, err := parseDateParam(r, "start_date")
	if err != nil {
		return filters, errors.New("start_date inválida")
	}
	filters.StartDate = start

	end, err := parseDateParam(r, "end_date")
	if err != nil {
		return filters, errors.New("end_date inválida")
	}
	filters.EndDate = end

	return filters, nil
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
