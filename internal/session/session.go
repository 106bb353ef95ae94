package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthenticated indica ausência de sessão ativa ou credencial expirada.
	ErrUnauthenticated = errors.New("não autenticado")
	// ErrForbidden indica ausência de permissão. Decisão local, nunca vai ao backend.
	ErrForbidden = errors.New("acesso negado")
)

// Credentials são as credenciais de login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticator é o colaborador que troca credenciais por identidade.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (Identity, string, error)
	CurrentIdentity(ctx context.Context, token string) (Identity, error)
}

// Store persiste token e identidade entre execuções.
type Store interface {
	Save(ctx context.Context, token string, identity Identity) error
	Load(ctx context.Context) (string, *Identity, error)
	Clear(ctx context.Context) error
}

// Session guarda a identidade corrente com ciclo de vida explícito.
// O ciclo é binário: autenticada ou não; login sobre sessão ativa
// apenas substitui a identidade.
type Session struct {
	auth  Authenticator
	store Store

	mu       sync.RWMutex
	identity *Identity
	token    string
}

// New cria uma sessão vazia com os colaboradores informados.
func New(auth Authenticator, store Store) *Session {
	return &Session{auth: auth, store: store}
}

// Identity devolve a identidade corrente (nil quando não autenticada).
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Token devolve o token da sessão corrente.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated informa se existe identidade corrente.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Login autentica via colaborador e estabelece a identidade corrente.
// Falha não é retentada: o chamador decide o que fazer.
func (s *Session) Login(ctx context.Context, creds Credentials) (*Identity, error) {
	identity, token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, token, identity); err != nil {
			log.Warn().Err(err).Msg("sessão: falha ao persistir credencial")
		}
	}

	return &identity, nil
}

// Logout encerra a sessão. Idempotente: seguro sem identidade presente.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("sessão: falha ao limpar credencial persistida")
		}
	}
}

// Restore tenta restabelecer a sessão a partir da credencial persistida.
// Uma falha de autenticação durante a validação descarta token e identidade.
func (s *Session) Restore(ctx context.Context) (*Identity, error) {
	if s.store == nil {
		return nil, ErrUnauthenticated
	}

	token, stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" || stored == nil {
		return nil, ErrUnauthenticated
	}

	identity, err := s.auth.CurrentIdentity(ctx, token)
	if err != nil {
		_ = s.store.Clear(ctx)
		return nil, err
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()

	return &identity, nil
}

// Invalidate descarta a sessão após falha de autorização observada em
// um colaborador (credencial expirada). Condição fatal para a sessão.
func (s *Session) Invalidate(ctx context.Context) {
	log.Warn().Msg("sessão: credencial rejeitada pelo backend, encerrando")
	s.Logout(ctx)
}

// HasRole delega para a função pura com a identidade corrente.
func (s *Session) HasRole(roles ...Role) bool {
	return HasRole(s.Identity(), roles...)
}

// CanManageTeam delega para a função pura com a identidade corrente.
func (s *Session) CanManageTeam(teamID uuid.UUID) bool {
	return CanManageTeam(s.Identity(), teamID)
}

// CanEditRequest delega para a função pura com a identidade corrente.
func (s *Session) CanEditRequest(req RequestScope) bool {
	return CanEditRequest(s.Identity(), req)
}
