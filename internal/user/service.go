package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/auth"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/util"
)

var (
	ErrInvalidRole = errors.New("papel desconhecido")
)

type userRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error)
	Create(ctx context.Context, input CreateUserInput, passwordHash string) (*User, error)
}

// Service contém as regras de cadastro e consulta de usuários.
type Service struct {
	repo userRepository
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List devolve todos os usuários.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListByTeam devolve os membros de uma equipe.
func (s *Service) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error) {
	return s.repo.ListByTeam(ctx, teamID)
}

// Get busca usuário por id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create valida e cadastra um novo usuário.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if !session.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, input, hash)
}
