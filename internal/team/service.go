package team

import (
	"context"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/util"
)

type teamRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, input CreateTeamInput) (*Team, error)
}

// Service contém as regras de negócio de equipes.
type Service struct {
	repo teamRepository
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get busca equipe por id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Team, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve todas as equipes.
func (s *Service) List(ctx context.Context) ([]Team, error) {
	return s.repo.List(ctx)
}

// Create valida e registra uma nova equipe.
func (s *Service) Create(ctx context.Context, input CreateTeamInput) (*Team, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}
