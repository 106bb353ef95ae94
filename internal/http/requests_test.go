package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/session"
)

func newFilterRequest(t *testing.T, rawQuery string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	req.URL.RawQuery = rawQuery
	return req
}

func TestParseRequestFilters(t *testing.T) {
	equipmentID := uuid.New()

	filters, err := parseRequestFilters(newFilterRequest(t,
		"status=new&type=corrective&priority=high&equipment_id="+equipmentID.String()+
			"&search=%20correia%20&start_date=2026-01-01&end_date=2026-01-31"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if filters.Status == nil || *filters.Status != request.StatusNew {
		t.Fatal("status não aplicado")
	}
	if filters.Type == nil || *filters.Type != request.TypeCorrective {
		t.Fatal("type não aplicado")
	}
	if filters.Priority == nil || *filters.Priority != request.PriorityHigh {
		t.Fatal("priority não aplicada")
	}
	if filters.EquipmentID == nil || *filters.EquipmentID != equipmentID {
		t.Fatal("equipment_id não aplicado")
	}
	if filters.Search != "correia" {
		t.Fatalf("search esperado sem espaços, veio %q", filters.Search)
	}
	if filters.StartDate == nil || filters.StartDate.Format("2006-01-02") != "2026-01-01" {
		t.Fatal("start_date não aplicada")
	}
	if filters.EndDate == nil || filters.EndDate.Format("2006-01-02") != "2026-01-31" {
		t.Fatal("end_date não aplicada")
	}
}

func TestParseRequestFiltersRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"status=closed",
		"type=urgent",
		"priority=maxima",
		"team_id=nao-e-uuid",
		"start_date=01/01/2026",
	}

	for _, rawQuery := range cases {
		if _, err := parseRequestFilters(newFilterRequest(t, rawQuery)); err == nil {
			t.Fatalf("query %q deveria falhar", rawQuery)
		}
	}
}

func TestParseRequestFiltersEmptyQuery(t *testing.T) {
	filters, err := parseRequestFilters(newFilterRequest(t, ""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filters.Status != nil || filters.EquipmentID != nil || filters.Search != "" {
		t.Fatalf("filtros deveriam estar vazios: %+v", filters)
	}
}

func TestHandleRequestErrorMapping(t *testing.T) {
	handler := &Handler{}

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{session.ErrUnauthenticated, http.StatusUnauthorized, "AUTH"},
		{session.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{request.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{equipment.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{equipment.ErrScrapped, http.StatusConflict, "CONFLICT"},
		{request.ErrInvalidStatus, http.StatusBadRequest, "VALIDATION"},
		{errors.New("falha interna qualquer"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler.handleRequestError(rec, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("erro %v: esperava %d, veio %d", tc.err, tc.status, rec.Code)
		}

		var env Envelope
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("decodificar envelope: %v", err)
		}
		if env.Error == nil || env.Error.Code != tc.code {
			t.Fatalf("erro %v: código esperado %s, veio %+v", tc.err, tc.code, env.Error)
		}
	}
}

func TestHandleRequestErrorHidesInternalMessage(t *testing.T) {
	handler := &Handler{}
	rec := httptest.NewRecorder()
	handler.handleRequestError(rec, errors.New("pgx: conexão recusada em 10.0.0.3"))

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decodificar envelope: %v", err)
	}
	if env.Error.Message != "erro interno" {
		t.Fatalf("mensagem interna vazou: %q", env.Error.Message)
	}
}
