package request

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gearguard/api/internal/db"
	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/events"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/util"
)

var (
	ErrInvalidStatus   = errors.New("status de chamado desconhecido")
	ErrInvalidType     = errors.New("tipo de chamado desconhecido")
	ErrInvalidPriority = errors.New("prioridade desconhecida")
)

const statsCacheKey = "dashboard:stats"
const statsCacheTTL = time.Minute

type requestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)
	List(ctx context.Context, filters Filters) ([]MaintenanceRequest, error)
	Create(ctx context.Context, input CreateRequestInput, teamID, requestedByID uuid.UUID) (*MaintenanceRequest, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRequestInput) (*MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status, completedAt *time.Time) error
	StatusCounts(ctx context.Context) (map[Status]int, error)
	TypeCounts(ctx context.Context) (map[Type]int, error)
	OverdueCount(ctx context.Context, today time.Time) (int, error)
	CompletedSince(ctx context.Context, since time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]MaintenanceRequest, error)
	Upcoming(ctx context.Context, from time.Time, limit int) ([]MaintenanceRequest, error)
	CountEquipment(ctx context.Context) (int, error)
}

type equipmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*equipment.Equipment, error)
	MarkScrapped(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	TouchMaintenance(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Service concentra as regras de negócio de chamados de manutenção.
type Service struct {
	repo      requestRepository
	equipment equipmentStore
	pool      *pgxpool.Pool
	cache     *redis.Client
	publisher events.Publisher
}

// NewService cria um novo serviço de chamados.
func NewService(repo *Repository, equipRepo *equipment.Repository, pool *pgxpool.Pool, cache *redis.Client, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{repo: repo, equipment: equipRepo, pool: pool, cache: cache, publisher: publisher}
}

func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if s.pool == nil {
		return fn(ctx, nil)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// Get busca chamado por id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve chamados com filtros explícitos.
func (s *Service) List(ctx context.Context, filters Filters) ([]MaintenanceRequest, error) {
	return s.repo.List(ctx, filters)
}

// ListFor devolve chamados já estreitados pelo papel da identidade.
func (s *Service) ListFor(ctx context.Context, identity *session.Identity, filters Filters) ([]MaintenanceRequest, error) {
	return s.repo.List(ctx, filters.NarrowFor(identity))
}

// Create valida e abre um novo chamado. A equipe é sempre derivada do
// equipamento; equipamento sucateado não aceita chamados novos.
func (s *Service) Create(ctx context.Context, actor *session.Identity, input CreateRequestInput) (*MaintenanceRequest, error) {
	if actor == nil {
		return nil, session.ErrUnauthenticated
	}
	if err := util.RequireString(input.Subject, "assunto"); err != nil {
		return nil, err
	}
	if !ValidType(input.Type) {
		return nil, ErrInvalidType
	}
	if !ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	if input.EquipmentID == uuid.Nil {
		return nil, errors.New("equipamento obrigatório")
	}

	equip, err := s.equipment.GetByID(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if equip.Status == equipment.StatusScrapped {
		return nil, equipment.ErrScrapped
	}

	created, err := s.repo.Create(ctx, input, equip.TeamID, actor.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return created, nil
}

// Update aplica atualização parcial após o portão de autorização.
func (s *Service) Update(ctx context.Context, actor *session.Identity, id uuid.UUID, input UpdateRequestInput) (*MaintenanceRequest, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanEditRequest(actor, current.Scope()) {
		return nil, session.ErrForbidden
	}
	if input.Priority != nil && !ValidPriority(*input.Priority) {
		return nil, ErrInvalidPriority
	}
	return s.repo.Update(ctx, id, input)
}

// UpdateStatus troca a raia do chamado. Não há grafo de transição:
// qualquer raia pode ir para qualquer raia, o portão é só autorização.
// Mover para sucata marca o equipamento como sucateado na mesma
// transação e emite o evento correspondente.
func (s *Service) UpdateStatus(ctx context.Context, actor *session.Identity, id uuid.UUID, status Status) (*MaintenanceRequest, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanEditRequest(actor, current.Scope()) {
		return nil, session.ErrForbidden
	}
	if current.Status == status {
		return current, nil
	}

	var completedAt *time.Time
	if status.Resolved() {
		now := util.Now()
		completedAt = &now
	}

	err = s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.UpdateStatus(ctx, tx, id, status, completedAt); err != nil {
			return err
		}
		switch status {
		case StatusScrap:
			return s.equipment.MarkScrapped(ctx, tx, current.EquipmentID)
		case StatusRepaired:
			return s.equipment.TouchMaintenance(ctx, tx, current.EquipmentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == StatusScrap {
		evt := events.EquipmentScrappedEvent{
			EquipmentID: current.EquipmentID,
			RequestID:   current.ID,
			ActorID:     actor.ID,
			OccurredAt:  util.Now(),
		}
		if err := s.publisher.PublishEquipmentScrapped(ctx, evt); err != nil {
			log.Warn().Err(err).
				Str("equipment_id", current.EquipmentID.String()).
				Msg("evento equipment.scrapped não publicado")
		}
	}

	s.invalidateStats(ctx)
	return s.repo.GetByID(ctx, id)
}

// CalendarEvents projeta os chamados agendados no período.
func (s *Service) CalendarEvents(ctx context.Context, identity *session.Identity, from, to *time.Time) ([]CalendarEvent, error) {
	filters := Filters{StartDate: from, EndDate: to}.NarrowFor(identity)
	requests, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	events := make([]CalendarEvent, 0, len(requests))
	for _, req := range requests {
		if req.ScheduledDate == nil {
			continue
		}
		events = append(events, CalendarEvent{
			ID:             req.ID,
			Title:          req.Subject,
			Start:          *req.ScheduledDate,
			Type:           req.Type,
			Status:         req.Status,
			EquipmentID:    req.EquipmentID,
			EquipmentName:  req.EquipmentName,
			AssignedToID:   req.AssignedToID,
			AssignedToName: req.AssignedToName,
		})
	}
	return events, nil
}

// Stats monta o resumo do painel, com cache curto em redis.
func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats DashboardStats
			if json.Unmarshal(data, &stats) == nil {
				return &stats, nil
			}
		}
	}

	now := util.Now()
	today := util.DateOnly(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	statusCounts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	typeCounts, err := s.repo.TypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.OverdueCount(ctx, today)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CompletedSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	totalEquipment, err := s.repo.CountEquipment(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.repo.Upcoming(ctx, today, 5)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalEquipment:     totalEquipment,
		ActiveRequests:     statusCounts[StatusNew] + statusCounts[StatusInProgress],
		CompletedThisMonth: completed,
		OverdueRequests:    overdue,
		RequestsByStatus:   statusCounts,
		RequestsByType:     typeCounts,
		RecentRequests:     recent,
		UpcomingRequests:   upcoming,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}

	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, statsCacheKey)
	}
}
