package request

import (
	"github.com/gearguard/api/internal/session"
)

// NarrowFor aplica o estreitamento implícito por papel sobre os filtros
// explícitos, antes da consulta ao backend:
//   - técnico enxerga apenas chamados atribuídos a ele;
//   - gerente com equipe enxerga apenas chamados da sua equipe;
//   - funcionário enxerga apenas chamados abertos por ele;
//   - admin enxerga tudo.
func (f Filters) NarrowFor(identity *session.Identity) Filters {
	if identity == nil {
		return f
	}
	switch {
	case session.HasRole(identity, session.RoleTechnician):
		id := identity.ID
		f.AssignedToID = &id
	case session.HasRole(identity, session.RoleManager) && identity.TeamID != nil:
		teamID := *identity.TeamID
		f.TeamID = &teamID
	case session.HasRole(identity, session.RoleEmployee):
		id := identity.ID
		f.RequestedByID = &id
	}
	return f
}
