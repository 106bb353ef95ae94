package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/session"
)

var (
	ErrNotFound = errors.New("usuário não encontrado")
)

// User representa um usuário da plataforma.
type User struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      session.Role `json:"role"`
	TeamID    *uuid.UUID   `json:"team_id,omitempty"`
	SenhaHash string       `json:"-"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Identity projeta o usuário na identidade de sessão.
func (u User) Identity() session.Identity {
	return session.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		TeamID:    u.TeamID,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUserInput contém os campos para cadastro.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     session.Role
	TeamID   *uuid.UUID
}
