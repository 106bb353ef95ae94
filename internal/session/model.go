package session

import (
	"time"

	"github.com/google/uuid"
)

// Role é o papel de autorização de um usuário.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleEmployee   Role = "employee"
)

// ValidRole informa se o papel é conhecido.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTechnician, RoleEmployee:
		return true
	}
	return false
}

// Identity representa o usuário autenticado da sessão corrente.
type Identity struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RequestScope carrega os campos de um chamado relevantes para autorização.
type RequestScope struct {
	TeamID       uuid.UUID
	AssignedToID *uuid.UUID
}

// HasRole devolve true se a identidade existe e possui um dos papéis.
// Sem identidade a resposta é sempre false.
func HasRole(identity *Identity, roles ...Role) bool {
	if identity == nil {
		return false
	}
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// CanManageTeam decide se a identidade administra a equipe informada.
func CanManageTeam(identity *Identity, teamID uuid.UUID) bool {
	if identity == nil {
		return false
	}
	if HasRole(identity, RoleAdmin) {
		return true
	}
	if HasRole(identity, RoleManager) && identity.TeamID != nil && *identity.TeamID == teamID {
		return true
	}
	return false
}

// CanEditRequest decide se a identidade pode editar/mover o chamado.
// Funcionário nunca edita, nem o chamado que ele próprio abriu.
func CanEditRequest(identity *Identity, req RequestScope) bool {
	if identity == nil {
		return false
	}
	if HasRole(identity, RoleAdmin) {
		return true
	}
	if HasRole(identity, RoleManager) && identity.TeamID != nil && *identity.TeamID == req.TeamID {
		return true
	}
	if HasRole(identity, RoleTechnician) && req.AssignedToID != nil && identity.ID == *req.AssignedToID {
		return true
	}
	return false
}
