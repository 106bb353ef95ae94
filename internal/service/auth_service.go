package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gearguard/api/internal/auth"
	"github.com/gearguard/api/internal/user"
	"github.com/gearguard/api/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type userRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type refreshRepository interface {
	GetByHash(ctx context.Context, tokenHash string) (RefreshToken, error)
	Insert(ctx context.Context, token RefreshToken) error
	InvalidateOthers(ctx context.Context, subject uuid.UUID, keepHash string) error
	Revoke(ctx context.Context, tokenHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	users      userRepository
	tokens     refreshRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(users *user.Repository, tokens *RefreshRepository, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	User          *user.User
	RefreshHash   string
	RefreshExpiry time.Time
}

// Login autentica por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, account.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, account)
}

func (s *AuthService) issueTokens(ctx context.Context, account *user.User) (*LoginResult, error) {
	if !account.Active {
		return nil, ErrAccountDisabled
	}

	token, _, err := s.jwt.GenerateAccessToken(account.ID.String(), string(account.Role), account.TeamID)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, account.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		User:          account,
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// Refresh troca refresh token por novos tokens, com rotação.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, errRefreshNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoked || util.Now().After(record.ExpiresAt) {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	account, err := s.users.GetByID(ctx, record.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	result, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	// Revoga token anterior (DB + Redis)
	if err := s.tokens.Revoke(ctx, hash); err != nil && !errors.Is(err, errRefreshNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.tokens.Revoke(ctx, hash); err != nil && !errors.Is(err, errRefreshNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe retorna o usuário autenticado.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, subject)
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	if err := s.tokens.Insert(ctx, RefreshToken{
		ID:        uuid.New(),
		Subject:   subject,
		TokenHash: hash,
		ExpiresAt: expires,
		CreatedAt: util.Now(),
	}); err != nil {
		return err
	}

	if err := s.tokens.InvalidateOthers(ctx, subject, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(hash), "active", time.Until(expires)).Err()
}
