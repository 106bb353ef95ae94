package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/auth"
	"github.com/gearguard/api/internal/session"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRole    contextKey = "role"
	ContextKeyTeam    contextKey = "team"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			if !session.ValidRole(session.Role(claims.Role)) {
				writeError(w, http.StatusUnauthorized, "AUTH", "papel inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			if claims.TeamID != nil {
				ctx = context.WithValue(ctx, ContextKeyTeam, *claims.TeamID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole recupera papel do contexto.
func GetRole(ctx context.Context) session.Role {
	val, _ := ctx.Value(ContextKeyRole).(string)
	return session.Role(val)
}

// GetTeamID recupera equipe do contexto, se houver.
func GetTeamID(ctx context.Context) *uuid.UUID {
	val, ok := ctx.Value(ContextKeyTeam).(uuid.UUID)
	if !ok {
		return nil
	}
	return &val
}

// IdentityFromContext reconstrói a identidade mínima a partir das claims.
// Devolve nil quando a requisição não passou pelo middleware Auth.
func IdentityFromContext(ctx context.Context) *session.Identity {
	subject := GetSubject(ctx)
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil
	}
	return &session.Identity{
		ID:     id,
		Role:   GetRole(ctx),
		TeamID: GetTeamID(ctx),
	}
}

// RequireRoles garante que o usuário possua um dos papéis informados.
func RequireRoles(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if session.HasRole(identity, roles...) {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
