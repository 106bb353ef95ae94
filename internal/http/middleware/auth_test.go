package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/auth"
	"github.com/gearguard/api/internal/session"
)

func newTestJWT() *auth.JWTManager {
	return auth.NewJWTManager(strings.Repeat("a", 32), time.Minute)
}

func TestAuthInjectsClaims(t *testing.T) {
	jwtManager := newTestJWT()
	userID := uuid.New()
	teamID := uuid.New()

	token, _, err := jwtManager.GenerateAccessToken(userID.String(), "manager", &teamID)
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}

	var identity *session.Identity
	handler := Auth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("esperava 200, veio %d", rec.Code)
	}
	if identity == nil {
		t.Fatal("identidade não injetada")
	}
	if identity.ID != userID || identity.Role != session.RoleManager {
		t.Fatalf("claims erradas: %+v", identity)
	}
	if identity.TeamID == nil || *identity.TeamID != teamID {
		t.Fatal("team_id não propagado")
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(newTestJWT())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria executar")
	}))

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("esperava 401, veio %d", rec.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(newTestJWT())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria executar")
	}))

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	req.Header.Set("Authorization", "Bearer nao-e-um-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("esperava 401, veio %d", rec.Code)
	}
}

func TestAuthRejectsUnknownRole(t *testing.T) {
	jwtManager := newTestJWT()
	token, _, err := jwtManager.GenerateAccessToken(uuid.NewString(), "superuser", nil)
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}

	handler := Auth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria executar")
	}))

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("esperava 401, veio %d", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	jwtManager := newTestJWT()

	cases := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"manager", http.StatusOK},
		{"technician", http.StatusForbidden},
		{"employee", http.StatusForbidden},
	}

	for _, tc := range cases {
		token, _, err := jwtManager.GenerateAccessToken(uuid.NewString(), tc.role, nil)
		if err != nil {
			t.Fatalf("gerar token: %v", err)
		}

		handler := Auth(jwtManager)(RequireRoles(session.RoleAdmin, session.RoleManager)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		))

		req := httptest.NewRequest(http.MethodPost, "/equipment", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("papel %s: esperava %d, veio %d", tc.role, tc.want, rec.Code)
		}
	}
}
