package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de usuários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de usuários.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, team_id, password_hash, active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.TeamID, &u.SenhaHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail busca usuário pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `
	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(strings.ToLower(email)))
	return scanUser(row)
}

// GetByID busca usuário pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `
	row := r.pool.QueryRow(ctx, query, id)
	return scanUser(row)
}

// List devolve todos os usuários ordenados por nome.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// ListByTeam devolve os usuários vinculados à equipe.
func (r *Repository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE team_id = $1
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// Create insere um novo usuário e devolve os dados persistidos.
func (r *Repository) Create(ctx context.Context, input CreateUserInput, passwordHash string) (*User, error) {
	const query = `
        INSERT INTO users (email, name, role, team_id, password_hash, active)
        VALUES ($1, $2, $3, $4, $5, true)
        RETURNING ` + userColumns + `
    `
	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(strings.ToLower(input.Email)),
		strings.TrimSpace(input.Name),
		input.Role,
		input.TeamID,
		passwordHash,
	)
	return scanUser(row)
}
