package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gearguard/api/internal/auth"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/user"
)

type stubUserRepo struct {
	user *user.User
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if s.user != nil && strings.EqualFold(email, s.user.Email) {
		copied := *s.user
		return &copied, nil
	}
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if s.user != nil && id == s.user.ID {
		copied := *s.user
		return &copied, nil
	}
	return nil, user.ErrNotFound
}

type stubRefreshRepo struct {
	tokens      map[string]RefreshToken
	inserts     int
	invalidated int
}

func (s *stubRefreshRepo) GetByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	if token, ok := s.tokens[tokenHash]; ok {
		return token, nil
	}
	return RefreshToken{}, errRefreshNotFound
}

func (s *stubRefreshRepo) Insert(ctx context.Context, token RefreshToken) error {
	if s.tokens == nil {
		s.tokens = make(map[string]RefreshToken)
	}
	s.tokens[token.TokenHash] = token
	s.inserts++
	return nil
}

func (s *stubRefreshRepo) InvalidateOthers(ctx context.Context, subject uuid.UUID, keepHash string) error {
	for hash, token := range s.tokens {
		if token.Subject == subject && hash != keepHash {
			token.Revoked = true
			s.tokens[hash] = token
			s.invalidated++
		}
	}
	return nil
}

func (s *stubRefreshRepo) Revoke(ctx context.Context, tokenHash string) error {
	token, ok := s.tokens[tokenHash]
	if !ok {
		return errRefreshNotFound
	}
	token.Revoked = true
	s.tokens[tokenHash] = token
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newTestAuthService(t *testing.T, account *user.User) (*AuthService, *stubRefreshRepo, *stubRedis) {
	t.Helper()
	tokens := &stubRefreshRepo{}
	cache := &stubRedis{}
	jwtMgr := auth.NewJWTManager(strings.Repeat("a", 32), time.Minute)
	svc := &AuthService{
		users:      &stubUserRepo{user: account},
		tokens:     tokens,
		redis:      cache,
		jwt:        jwtMgr,
		refreshTTL: time.Hour,
	}
	return svc, tokens, cache
}

func testUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	team := uuid.New()
	return &user.User{
		ID:        uuid.New(),
		Email:     "tecnico@example.com",
		Name:      "Técnico Teste",
		Role:      session.RoleTechnician,
		TeamID:    &team,
		SenhaHash: hash,
		Active:    true,
	}
}

func TestLoginIssuesTokensWithRoleClaims(t *testing.T) {
	password := "SenhaForte123!"
	account := testUser(t, password)
	svc, tokens, cache := newTestAuthService(t, account)

	result, err := svc.Login(context.Background(), account.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.jwt.ParseAndValidate(result.AccessToken)
	if err != nil {
		t.Fatalf("token inválido: %v", err)
	}
	if claims.Subject != account.ID.String() {
		t.Fatal("subject errado no token")
	}
	if claims.Role != string(session.RoleTechnician) {
		t.Fatalf("papel esperado technician, veio %s", claims.Role)
	}
	if claims.TeamID == nil || *claims.TeamID != *account.TeamID {
		t.Fatal("equipe deveria viajar nas claims")
	}

	if tokens.inserts != 1 {
		t.Fatalf("refresh deveria ser persistido uma vez, foi %d", tokens.inserts)
	}
	hash := auth.HashRefreshToken(result.RefreshToken)
	if cache.store[auth.RefreshRedisKey(hash)] != "active" {
		t.Fatal("refresh deveria estar ativo no redis")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	account := testUser(t, "SenhaForte123!")
	svc, _, _ := newTestAuthService(t, account)

	if _, err := svc.Login(context.Background(), account.Email, "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t, testUser(t, "SenhaForte123!"))

	if _, err := svc.Login(context.Background(), "ninguem@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	password := "SenhaForte123!"
	account := testUser(t, password)
	account.Active = false
	svc, _, _ := newTestAuthService(t, account)

	if _, err := svc.Login(context.Background(), account.Email, password); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperava ErrAccountDisabled, veio %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	password := "SenhaForte123!"
	account := testUser(t, password)
	svc, tokens, cache := newTestAuthService(t, account)

	first, err := svc.Login(context.Background(), account.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh deveria rotacionar o token")
	}

	oldHash := auth.HashRefreshToken(first.RefreshToken)
	if token := tokens.tokens[oldHash]; !token.Revoked {
		t.Fatal("token antigo deveria estar revogado")
	}
	if _, ok := cache.store[auth.RefreshRedisKey(oldHash)]; ok {
		t.Fatal("token antigo deveria sair do redis")
	}

	// token antigo não serve mais
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reuso de refresh deveria falhar, veio %v", err)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t, testUser(t, "SenhaForte123!"))

	if _, err := svc.Refresh(context.Background(), "token-inventado"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("refresh vazio deveria falhar, veio %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	password := "SenhaForte123!"
	account := testUser(t, password)
	svc, tokens, _ := newTestAuthService(t, account)

	result, err := svc.Login(context.Background(), account.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	token := tokens.tokens[hash]
	token.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	tokens.tokens[hash] = token

	if _, err := svc.Refresh(context.Background(), result.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("refresh expirado deveria falhar, veio %v", err)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	password := "SenhaForte123!"
	account := testUser(t, password)
	svc, tokens, cache := newTestAuthService(t, account)

	result, err := svc.Login(context.Background(), account.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	if token := tokens.tokens[hash]; !token.Revoked {
		t.Fatal("logout deveria revogar o refresh")
	}
	if _, ok := cache.store[auth.RefreshRedisKey(hash)]; ok {
		t.Fatal("logout deveria limpar o redis")
	}

	// logout sem token é seguro
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout vazio deveria ser seguro: %v", err)
	}
}
