package team

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("equipe não encontrada")
)

// Team representa uma equipe de manutenção.
type Team struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	LeaderID    *uuid.UUID `json:"leader_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateTeamInput contém os campos necessários para registrar uma equipe.
type CreateTeamInput struct {
	Name        string
	Description *string
	LeaderID    *uuid.UUID
}
