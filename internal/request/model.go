package request

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/session"
)

var (
	ErrNotFound = errors.New("chamado não encontrado")
)

// Status é a raia do quadro em que o chamado se encontra.
// Não há grafo de transição: qualquer raia pode ir para qualquer raia,
// o único portão é a autorização.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusRepaired   Status = "repaired"
	StatusScrap      Status = "scrap"
)

// ValidStatus informa se o status é conhecido.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusRepaired, StatusScrap:
		return true
	}
	return false
}

// Resolved informa se o chamado está encerrado (reparado ou sucateado).
func (s Status) Resolved() bool {
	return s == StatusRepaired || s == StatusScrap
}

// Type classifica o chamado.
type Type string

const (
	TypeCorrective Type = "corrective"
	TypePreventive Type = "preventive"
)

// ValidType informa se o tipo é conhecido.
func ValidType(t Type) bool {
	return t == TypeCorrective || t == TypePreventive
}

// Priority é a prioridade do chamado.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ValidPriority informa se a prioridade é conhecida.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// MaintenanceRequest é um chamado de manutenção sobre um equipamento.
// A equipe do chamado é sempre derivada da equipe do equipamento.
type MaintenanceRequest struct {
	ID             uuid.UUID  `json:"id"`
	Subject        string     `json:"subject"`
	Description    *string    `json:"description,omitempty"`
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	EquipmentID    uuid.UUID  `json:"equipment_id"`
	EquipmentName  string     `json:"equipment_name"`
	TeamID         uuid.UUID  `json:"team_id"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	AssignedToName *string    `json:"assigned_to_name,omitempty"`
	RequestedByID  uuid.UUID  `json:"requested_by_id"`
	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	Duration       *int       `json:"duration,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Scope projeta os campos usados pela decisão de autorização.
func (m MaintenanceRequest) Scope() session.RequestScope {
	return session.RequestScope{TeamID: m.TeamID, AssignedToID: m.AssignedToID}
}

// Filters restringe listagens de chamados. O estreitamento por papel
// é aplicado por cima destes filtros antes da consulta.
type Filters struct {
	Status        *Status
	Type          *Type
	Priority      *Priority
	EquipmentID   *uuid.UUID
	TeamID        *uuid.UUID
	AssignedToID  *uuid.UUID
	RequestedByID *uuid.UUID
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
}

// CreateRequestInput contém os campos para abertura de chamado.
type CreateRequestInput struct {
	Subject       string
	Description   *string
	Type          Type
	Priority      Priority
	EquipmentID   uuid.UUID
	AssignedToID  *uuid.UUID
	ScheduledDate *time.Time
}

// UpdateRequestInput aplica atualização parcial (status tem fluxo próprio).
type UpdateRequestInput struct {
	Subject       *string
	Description   *string
	Priority      *Priority
	AssignedToID  *uuid.UUID
	ScheduledDate *time.Time
	Duration      *int
	Notes         *string
}

// CalendarEvent projeta um chamado agendado para o calendário.
type CalendarEvent struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Start          time.Time  `json:"start"`
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	EquipmentID    uuid.UUID  `json:"equipment_id"`
	EquipmentName  string     `json:"equipment_name"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	AssignedToName *string    `json:"assigned_to_name,omitempty"`
}

// DashboardStats resume o estado do quadro para o painel.
type DashboardStats struct {
	TotalEquipment     int                  `json:"total_equipment"`
	ActiveRequests     int                  `json:"active_requests"`
	CompletedThisMonth int                  `json:"completed_this_month"`
	OverdueRequests    int                  `json:"overdue_requests"`
	RequestsByStatus   map[Status]int       `json:"requests_by_status"`
	RequestsByType     map[Type]int         `json:"requests_by_type"`
	RecentRequests     []MaintenanceRequest `json:"recent_requests"`
	UpcomingRequests   []MaintenanceRequest `json:"upcoming_requests"`
}
