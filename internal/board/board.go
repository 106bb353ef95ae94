package board

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/util"
)

// Backend é o colaborador que persiste e consulta chamados.
type Backend interface {
	FetchRequests(ctx context.Context, filters request.Filters) ([]request.MaintenanceRequest, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status request.Status) (request.MaintenanceRequest, error)
}

// Notifier recebe o sinal de sucateamento após um movimento para a raia
// de sucata. O quadro nunca altera o equipamento: apenas emite a
// necessidade e o chamador propaga.
type Notifier interface {
	EquipmentScrapped(ctx context.Context, equipmentID uuid.UUID)
}

// Board mantém o conjunto de chamados do quadro kanban e aplica
// transições de raia com atualização otimista e rollback.
// A sessão chega por injeção explícita, nunca por acesso global.
// Assume no máximo um movimento em voo por chamado.
type Board struct {
	sess     *session.Session
	backend  Backend
	notifier Notifier

	mu       sync.Mutex
	requests []request.MaintenanceRequest
}

// New cria um quadro vazio ligado à sessão e ao backend informados.
func New(sess *session.Session, backend Backend, notifier Notifier) *Board {
	return &Board{sess: sess, backend: backend, notifier: notifier}
}

// Requests devolve uma cópia do conjunto corrente.
func (b *Board) Requests() []request.MaintenanceRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]request.MaintenanceRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Lane devolve os chamados de uma raia, na ordem do conjunto.
func (b *Board) Lane(status request.Status) []request.MaintenanceRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []request.MaintenanceRequest
	for _, req := range b.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out
}

// Load recarrega o conjunto aplicando o estreitamento por papel da
// identidade corrente por cima dos filtros explícitos. Em caso de erro
// o conjunto fica vazio para que a interface ainda renderize.
func (b *Board) Load(ctx context.Context, filters request.Filters) error {
	identity := b.sess.Identity()
	data, err := b.backend.FetchRequests(ctx, filters.NarrowFor(identity))

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.requests = nil
		return err
	}
	b.requests = data
	return nil
}

// MoveRequest aplica uma transição de raia:
//  1. mesma raia: nada a fazer, nenhuma chamada ao backend;
//  2. sem permissão: ErrForbidden, conjunto intacto, nenhuma chamada;
//  3. atualização otimista do status local;
//  4. persistência no backend;
//  5. sucesso mantém o estado otimista (sucata emite o sinal de
//     sucateamento); falha restaura o snapshot completo pré-movimento.
func (b *Board) MoveRequest(ctx context.Context, requestID uuid.UUID, from, to request.Status) error {
	if to == from {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, req := range b.requests {
		if req.ID == requestID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return request.ErrNotFound
	}

	moved := b.requests[idx]
	if !session.CanEditRequest(b.sess.Identity(), moved.Scope()) {
		return session.ErrForbidden
	}

	snapshot := make([]request.MaintenanceRequest, len(b.requests))
	copy(snapshot, b.requests)

	b.requests[idx].Status = to

	if _, err := b.backend.UpdateRequestStatus(ctx, requestID, to); err != nil {
		// Rollback integral: o conjunto volta ao snapshot pré-movimento.
		b.requests = snapshot
		return err
	}

	if to == request.StatusScrap && b.notifier != nil {
		b.notifier.EquipmentScrapped(ctx, moved.EquipmentID)
	}

	return nil
}

// Filter devolve os chamados cujo assunto, equipamento, responsável ou
// descrição contém o termo (sem diferenciar maiúsculas). Campos
// opcionais ausentes são ignorados. Termo vazio devolve o conjunto
// inalterado, na mesma ordem.
func Filter(requests []request.MaintenanceRequest, query string) []request.MaintenanceRequest {
	query = strings.TrimSpace(query)
	if query == "" {
		return requests
	}

	query = strings.ToLower(query)
	var out []request.MaintenanceRequest
	for _, req := range requests {
		if matches(req, query) {
			out = append(out, req)
		}
	}
	return out
}

func matches(req request.MaintenanceRequest, query string) bool {
	if strings.Contains(strings.ToLower(req.Subject), query) {
		return true
	}
	if strings.Contains(strings.ToLower(req.EquipmentName), query) {
		return true
	}
	if req.AssignedToName != nil && strings.Contains(strings.ToLower(*req.AssignedToName), query) {
		return true
	}
	if req.Description != nil && strings.Contains(strings.ToLower(*req.Description), query) {
		return true
	}
	return false
}

// IsOverdue informa se o chamado está atrasado: agendado para antes de
// hoje (comparação só de data) e ainda não resolvido. Uso apenas
// visual, não afeta permissões nem transições.
func IsOverdue(req request.MaintenanceRequest, today time.Time) bool {
	if req.ScheduledDate == nil {
		return false
	}
	if req.Status.Resolved() {
		return false
	}
	return util.DateOnly(*req.ScheduledDate).Before(util.DateOnly(today))
}

// LogNotifier registra o sinal de sucateamento no log estruturado.
// Serve como notifier padrão para clientes de linha de comando.
type LogNotifier struct{}

// EquipmentScrapped escreve o aviso.
func (LogNotifier) EquipmentScrapped(ctx context.Context, equipmentID uuid.UUID) {
	log.Info().Str("equipment_id", equipmentID.String()).Msg("equipamento marcado como sucateado")
}
