package equipment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("equipamento não encontrado")
	// ErrScrapped bloqueia novas operações sobre equipamento sucateado.
	ErrScrapped = errors.New("equipamento sucateado")
)

// Status é o estado operacional de um equipamento.
type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusScrapped    Status = "scrapped"
)

// ValidStatus informa se o status é conhecido.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOperational, StatusMaintenance, StatusScrapped:
		return true
	}
	return false
}

// Equipment representa um ativo de manutenção.
// O registro nunca é removido: sucateamento é mutação de status,
// preservando o histórico de chamados.
type Equipment struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Description         *string    `json:"description,omitempty"`
	Location            string     `json:"location"`
	Status              Status     `json:"status"`
	TeamID              uuid.UUID  `json:"team_id"`
	SerialNumber        *string    `json:"serial_number,omitempty"`
	Manufacturer        *string    `json:"manufacturer,omitempty"`
	Model               *string    `json:"model,omitempty"`
	PurchaseDate        *time.Time `json:"purchase_date,omitempty"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CreateEquipmentInput contém os campos para cadastro.
type CreateEquipmentInput struct {
	Name         string
	Description  *string
	Location     string
	TeamID       uuid.UUID
	SerialNumber *string
	Manufacturer *string
	Model        *string
	PurchaseDate *time.Time
}

// UpdateEquipmentInput aplica atualização parcial.
type UpdateEquipmentInput struct {
	Name        *string
	Description *string
	Location    *string
	Status      *Status
	TeamID      *uuid.UUID
}

// Filters restringe listagens de equipamentos.
type Filters struct {
	Status *Status
	TeamID *uuid.UUID
	Search string
}
