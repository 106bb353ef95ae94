package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/events"
	"github.com/gearguard/api/internal/session"
)

type stubRequestRepo struct {
	byID        map[uuid.UUID]*MaintenanceRequest
	created     []CreateRequestInput
	createdTeam uuid.UUID
	statusCalls []Status
	completedAt *time.Time
}

func (s *stubRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error) {
	if req, ok := s.byID[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *stubRequestRepo) List(ctx context.Context, filters Filters) ([]MaintenanceRequest, error) {
	var out []MaintenanceRequest
	for _, req := range s.byID {
		out = append(out, *req)
	}
	return out, nil
}

func (s *stubRequestRepo) Create(ctx context.Context, input CreateRequestInput, teamID, requestedByID uuid.UUID) (*MaintenanceRequest, error) {
	s.created = append(s.created, input)
	s.createdTeam = teamID
	req := &MaintenanceRequest{
		ID:            uuid.New(),
		Subject:       input.Subject,
		Type:          input.Type,
		Status:        StatusNew,
		Priority:      input.Priority,
		EquipmentID:   input.EquipmentID,
		TeamID:        teamID,
		RequestedByID: requestedByID,
	}
	if s.byID == nil {
		s.byID = make(map[uuid.UUID]*MaintenanceRequest)
	}
	s.byID[req.ID] = req
	return req, nil
}

func (s *stubRequestRepo) Update(ctx context.Context, id uuid.UUID, input UpdateRequestInput) (*MaintenanceRequest, error) {
	req, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Subject != nil {
		req.Subject = *input.Subject
	}
	if input.Priority != nil {
		req.Priority = *input.Priority
	}
	copied := *req
	return &copied, nil
}

func (s *stubRequestRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status, completedAt *time.Time) error {
	req, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	req.CompletedDate = completedAt
	s.statusCalls = append(s.statusCalls, status)
	s.completedAt = completedAt
	return nil
}

func (s *stubRequestRepo) StatusCounts(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, req := range s.byID {
		counts[req.Status]++
	}
	return counts, nil
}

func (s *stubRequestRepo) TypeCounts(ctx context.Context) (map[Type]int, error) {
	counts := make(map[Type]int)
	for _, req := range s.byID {
		counts[req.Type]++
	}
	return counts, nil
}

func (s *stubRequestRepo) OverdueCount(ctx context.Context, today time.Time) (int, error) {
	return 0, nil
}

func (s *stubRequestRepo) CompletedSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

func (s *stubRequestRepo) Recent(ctx context.Context, limit int) ([]MaintenanceRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]MaintenanceRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) CountEquipment(ctx context.Context) (int, error) {
	return len(s.byID), nil
}

type stubEquipmentStore struct {
	equipment map[uuid.UUID]*equipment.Equipment
	scrapped  []uuid.UUID
	touched   []uuid.UUID
}

func (s *stubEquipmentStore) GetByID(ctx context.Context, id uuid.UUID) (*equipment.Equipment, error) {
	if eq, ok := s.equipment[id]; ok {
		copied := *eq
		return &copied, nil
	}
	return nil, equipment.ErrNotFound
}

func (s *stubEquipmentStore) MarkScrapped(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	s.scrapped = append(s.scrapped, id)
	return nil
}

func (s *stubEquipmentStore) TouchMaintenance(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	s.touched = append(s.touched, id)
	return nil
}

type capturePublisher struct {
	events []events.EquipmentScrappedEvent
	err    error
}

func (c *capturePublisher) PublishEquipmentScrapped(ctx context.Context, evt events.EquipmentScrappedEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func newTestService(repo *stubRequestRepo, store *stubEquipmentStore, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{repo: repo, equipment: store, publisher: pub}
}

func adminIdentity() *session.Identity {
	return &session.Identity{ID: uuid.New(), Role: session.RoleAdmin}
}

func seedEquipment(status equipment.Status) (*stubEquipmentStore, *equipment.Equipment) {
	eq := &equipment.Equipment{ID: uuid.New(), Name: "Prensa 04", Status: status, TeamID: uuid.New()}
	store := &stubEquipmentStore{equipment: map[uuid.UUID]*equipment.Equipment{eq.ID: eq}}
	return store, eq
}

func TestCreateRejectsScrappedEquipment(t *testing.T) {
	store, eq := seedEquipment(equipment.StatusScrapped)
	repo := &stubRequestRepo{}
	svc := newTestService(repo, store, nil)

	_, err := svc.Create(context.Background(), adminIdentity(), CreateRequestInput{
		Subject:     "Troca de correia",
		Type:        TypeCorrective,
		Priority:    PriorityHigh,
		EquipmentID: eq.ID,
	})
	if !errors.Is(err, equipment.ErrScrapped) {
		t.Fatalf("esperava ErrScrapped, veio %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("equipamento sucateado não pode gerar chamado")
	}
}

func TestCreateDerivesTeamFromEquipment(t *testing.T) {
	store, eq := seedEquipment(equipment.StatusOperational)
	repo := &stubRequestRepo{}
	svc := newTestService(repo, store, nil)
	actor := adminIdentity()

	created, err := svc.Create(context.Background(), actor, CreateRequestInput{
		Subject:     "Troca de correia",
		Type:        TypeCorrective,
		Priority:    PriorityHigh,
		EquipmentID: eq.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.createdTeam != eq.TeamID || created.TeamID != eq.TeamID {
		t.Fatal("equipe do chamado é sempre derivada do equipamento")
	}
	if created.RequestedByID != actor.ID {
		t.Fatal("solicitante deveria ser o ator")
	}
	if created.Status != StatusNew {
		t.Fatal("chamado novo abre na raia new")
	}
}

func TestCreateRequiresActor(t *testing.T) {
	store, eq := seedEquipment(equipment.StatusOperational)
	svc := newTestService(&stubRequestRepo{}, store, nil)

	_, err := svc.Create(context.Background(), nil, CreateRequestInput{
		Subject:     "x",
		Type:        TypeCorrective,
		Priority:    PriorityLow,
		EquipmentID: eq.ID,
	})
	if !errors.Is(err, session.ErrUnauthenticated) {
		t.Fatalf("esperava ErrUnauthenticated, veio %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	store, eq := seedEquipment(equipment.StatusOperational)
	svc := newTestService(&stubRequestRepo{}, store, nil)
	actor := adminIdentity()

	if _, err := svc.Create(context.Background(), actor, CreateRequestInput{
		Subject: "", Type: TypeCorrective, Priority: PriorityLow, EquipmentID: eq.ID,
	}); err == nil {
		t.Fatal("assunto vazio deveria falhar")
	}

	if _, err := svc.Create(context.Background(), actor, CreateRequestInput{
		Subject: "x", Type: "invalid", Priority: PriorityLow, EquipmentID: eq.ID,
	}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("tipo inválido: %v", err)
	}

	if _, err := svc.Create(context.Background(), actor, CreateRequestInput{
		Subject: "x", Type: TypeCorrective, Priority: "urgentíssima", EquipmentID: eq.ID,
	}); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("prioridade inválida: %v", err)
	}
}

func seedRequest(repo *stubRequestRepo, teamID uuid.UUID, status Status) *MaintenanceRequest {
	req := &MaintenanceRequest{
		ID:          uuid.New(),
		Subject:     "Revisão",
		Type:        TypePreventive,
		Status:      status,
		Priority:    PriorityMedium,
		EquipmentID: uuid.New(),
		TeamID:      teamID,
	}
	if repo.byID == nil {
		repo.byID = make(map[uuid.UUID]*MaintenanceRequest)
	}
	repo.byID[req.ID] = req
	return req
}

func TestUpdateDeniedForEmployee(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusNew)
	svc := newTestService(repo, &stubEquipmentStore{}, nil)

	employee := &session.Identity{ID: uuid.New(), Role: session.RoleEmployee}
	subject := "Novo assunto"
	_, err := svc.Update(context.Background(), employee, req.ID, UpdateRequestInput{Subject: &subject})
	if !errors.Is(err, session.ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusInProgress)
	svc := newTestService(repo, &stubEquipmentStore{}, nil)

	result, err := svc.UpdateStatus(context.Background(), adminIdentity(), req.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("no-op: %v", err)
	}
	if result.Status != StatusInProgress {
		t.Fatal("status deveria permanecer")
	}
	if len(repo.statusCalls) != 0 {
		t.Fatal("mesma raia não persiste nada")
	}
}

func TestUpdateStatusRepairedSetsCompletionAndTouchesEquipment(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusInProgress)
	store := &stubEquipmentStore{}
	svc := newTestService(repo, store, nil)

	result, err := svc.UpdateStatus(context.Background(), adminIdentity(), req.ID, StatusRepaired)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if result.Status != StatusRepaired {
		t.Fatal("status deveria ser repaired")
	}
	if repo.completedAt == nil {
		t.Fatal("raia resolvida deveria registrar data de conclusão")
	}
	if len(store.touched) != 1 || store.touched[0] != req.EquipmentID {
		t.Fatal("reparo deveria atualizar última manutenção do equipamento")
	}
	if len(store.scrapped) != 0 {
		t.Fatal("reparo não sucateia equipamento")
	}
}

func TestUpdateStatusScrapMarksEquipmentAndPublishes(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusInProgress)
	store := &stubEquipmentStore{}
	publisher := &capturePublisher{}
	svc := newTestService(repo, store, publisher)
	actor := adminIdentity()

	result, err := svc.UpdateStatus(context.Background(), actor, req.ID, StatusScrap)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if result.Status != StatusScrap {
		t.Fatal("status deveria ser scrap")
	}
	if repo.completedAt == nil {
		t.Fatal("sucata também é raia resolvida")
	}
	if len(store.scrapped) != 1 || store.scrapped[0] != req.EquipmentID {
		t.Fatal("sucata deveria marcar o equipamento")
	}
	if len(publisher.events) != 1 {
		t.Fatalf("esperava 1 evento, veio %d", len(publisher.events))
	}
	evt := publisher.events[0]
	if evt.EquipmentID != req.EquipmentID || evt.RequestID != req.ID || evt.ActorID != actor.ID {
		t.Fatal("evento de sucateamento com campos errados")
	}
}

func TestUpdateStatusPublishFailureDoesNotFailMove(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusNew)
	store := &stubEquipmentStore{}
	publisher := &capturePublisher{err: errors.New("amqp down")}
	svc := newTestService(repo, store, publisher)

	if _, err := svc.UpdateStatus(context.Background(), adminIdentity(), req.ID, StatusScrap); err != nil {
		t.Fatalf("falha de publicação não deveria falhar o movimento: %v", err)
	}
}

func TestUpdateStatusDeniedBeforeAnyWrite(t *testing.T) {
	team := uuid.New()
	repo := &stubRequestRepo{}
	req := seedRequest(repo, team, StatusNew)
	store := &stubEquipmentStore{}
	svc := newTestService(repo, store, nil)

	otherTeam := uuid.New()
	manager := &session.Identity{ID: uuid.New(), Role: session.RoleManager, TeamID: &otherTeam}
	_, err := svc.UpdateStatus(context.Background(), manager, req.ID, StatusScrap)
	if !errors.Is(err, session.ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
	if len(repo.statusCalls) != 0 || len(store.scrapped) != 0 {
		t.Fatal("negação não pode escrever nada")
	}
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	repo := &stubRequestRepo{}
	req := seedRequest(repo, uuid.New(), StatusNew)
	svc := newTestService(repo, &stubEquipmentStore{}, nil)

	if _, err := svc.UpdateStatus(context.Background(), adminIdentity(), req.ID, "limbo"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("esperava ErrInvalidStatus, veio %v", err)
	}
}
