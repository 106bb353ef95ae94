package equipment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gearguard/api/internal/db"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/util"
)

var (
	ErrInvalidStatus = errors.New("status de equipamento desconhecido")
)

type equipmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Equipment, error)
	List(ctx context.Context, filters Filters) ([]Equipment, error)
	Create(ctx context.Context, input CreateEquipmentInput) (*Equipment, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEquipmentInput) (*Equipment, error)
	UpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, input UpdateEquipmentInput) (*Equipment, error)
}

// requestReassigner propaga troca de equipe para os chamados do
// equipamento. Implementado pelo repositório de chamados.
type requestReassigner interface {
	ReassignTeamByEquipment(ctx context.Context, tx pgx.Tx, equipmentID, teamID uuid.UUID) error
}

// Service contém as regras de negócio de equipamentos.
type Service struct {
	repo     equipmentRepository
	requests requestReassigner
	pool     *pgxpool.Pool
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository, requests requestReassigner, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, requests: requests, pool: pool}
}

func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if s.pool == nil {
		return fn(ctx, nil)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// Get busca equipamento por id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Equipment, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve equipamentos com filtros.
func (s *Service) List(ctx context.Context, filters Filters) ([]Equipment, error) {
	return s.repo.List(ctx, filters)
}

// Create valida e cadastra um novo equipamento. O ator precisa gerir a
// equipe dona: gerente só cadastra na própria equipe.
func (s *Service) Create(ctx context.Context, actor *session.Identity, input CreateEquipmentInput) (*Equipment, error) {
	if actor == nil {
		return nil, session.ErrUnauthenticated
	}
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Location, "localização"); err != nil {
		return nil, err
	}
	if input.TeamID == uuid.Nil {
		return nil, errors.New("equipe obrigatória")
	}
	if !session.CanManageTeam(actor, input.TeamID) {
		return nil, session.ErrForbidden
	}
	return s.repo.Create(ctx, input)
}

// Update aplica atualização parcial. O ator precisa gerir a equipe dona
// do equipamento; troca de equipe exige gerir também a equipe destino e
// cascateia o team_id para os chamados no mesmo commit.
func (s *Service) Update(ctx context.Context, actor *session.Identity, id uuid.UUID, input UpdateEquipmentInput) (*Equipment, error) {
	if actor == nil {
		return nil, session.ErrUnauthenticated
	}
	if input.Status != nil && !ValidStatus(*input.Status) {
		return nil, ErrInvalidStatus
	}
	if input.Name != nil {
		if err := util.RequireString(*input.Name, "nome"); err != nil {
			return nil, err
		}
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanManageTeam(actor, current.TeamID) {
		return nil, session.ErrForbidden
	}

	if input.TeamID == nil || *input.TeamID == current.TeamID {
		return s.repo.Update(ctx, id, input)
	}

	newTeam := *input.TeamID
	if !session.CanManageTeam(actor, newTeam) {
		return nil, session.ErrForbidden
	}

	var updated *Equipment
	err = s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		updated, txErr = s.repo.UpdateTx(ctx, tx, id, input)
		if txErr != nil {
			return txErr
		}
		return s.requests.ReassignTeamByEquipment(ctx, tx, id, newTeam)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
