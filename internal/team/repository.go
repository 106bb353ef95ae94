package team

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de equipes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de equipes.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByID busca equipe pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	const query = `
        SELECT id, name, description, leader_id, created_at
        FROM teams
        WHERE id = $1
    `
	row := r.pool.QueryRow(ctx, query, id)
	return scanTeam(row)
}

// List devolve todas as equipes ordenadas por nome.
func (r *Repository) List(ctx context.Context) ([]Team, error) {
	const query = `
        SELECT id, name, description, leader_id, created_at
        FROM teams
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return teams, nil
}

// Create insere uma nova equipe e devolve os dados persistidos.
func (r *Repository) Create(ctx context.Context, input CreateTeamInput) (*Team, error) {
	const query = `
        INSERT INTO teams (name, description, leader_id)
        VALUES ($1, $2, $3)
        RETURNING id, name, description, leader_id, created_at
    `
	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name),
		input.Description,
		input.LeaderID,
	)
	return scanTeam(row)
}
