package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EquipmentScrappedEvent sinaliza que um chamado foi movido para sucata
// e o equipamento correspondente foi marcado como sucateado.
type EquipmentScrappedEvent struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	RequestID   uuid.UUID `json:"request_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emite eventos de domínio para consumidores externos.
type Publisher interface {
	PublishEquipmentScrapped(ctx context.Context, evt EquipmentScrappedEvent) error
	Close() error
}

// NoopPublisher descarta eventos. Usado quando o broker não está configurado.
type NoopPublisher struct{}

// PublishEquipmentScrapped não faz nada.
func (NoopPublisher) PublishEquipmentScrapped(ctx context.Context, evt EquipmentScrappedEvent) error {
	return nil
}

// Close não faz nada.
func (NoopPublisher) Close() error { return nil }
