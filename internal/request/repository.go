package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de chamados.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de chamados.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `
    r.id, r.subject, r.description, r.type, r.status, r.priority,
    r.equipment_id, e.name, r.team_id, r.assigned_to_id, u.name,
    r.requested_by_id, r.scheduled_date, r.completed_date, r.duration,
    r.notes, r.created_at, r.updated_at
`

const requestJoins = `
    FROM maintenance_requests r
    JOIN equipment e ON e.id = r.equipment_id
    LEFT JOIN users u ON u.id = r.assigned_to_id
`

func scanRequest(row pgx.Row) (*MaintenanceRequest, error) {
	var m MaintenanceRequest
	err := row.Scan(&m.ID, &m.Subject, &m.Description, &m.Type, &m.Status, &m.Priority,
		&m.EquipmentID, &m.EquipmentName, &m.TeamID, &m.AssignedToID, &m.AssignedToName,
		&m.RequestedByID, &m.ScheduledDate, &m.CompletedDate, &m.Duration,
		&m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByID busca chamado pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE r.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanRequest(row)
}

// List devolve chamados aplicando os filtros informados.
func (r *Repository) List(ctx context.Context, filters Filters) ([]MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE 1=1`
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filters.Status != nil {
		add(" AND r.status = $%d", *filters.Status)
	}
	if filters.Type != nil {
		add(" AND r.type = $%d", *filters.Type)
	}
	if filters.Priority != nil {
		add(" AND r.priority = $%d", *filters.Priority)
	}
	if filters.EquipmentID != nil {
		add(" AND r.equipment_id = $%d", *filters.EquipmentID)
	}
	if filters.TeamID != nil {
		add(" AND r.team_id = $%d", *filters.TeamID)
	}
	if filters.AssignedToID != nil {
		add(" AND r.assigned_to_id = $%d", *filters.AssignedToID)
	}
	if filters.RequestedByID != nil {
		add(" AND r.requested_by_id = $%d", *filters.RequestedByID)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (lower(r.subject) LIKE $%d OR lower(e.name) LIKE $%d OR lower(coalesce(u.name, '')) LIKE $%d OR lower(coalesce(r.description, '')) LIKE $%d)",
			n, n, n, n)
	}
	if filters.StartDate != nil {
		add(" AND r.scheduled_date >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		add(" AND r.scheduled_date <= $%d", *filters.EndDate)
	}

	query += " ORDER BY r.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MaintenanceRequest
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Create insere um novo chamado na raia "new".
func (r *Repository) Create(ctx context.Context, input CreateRequestInput, teamID, requestedByID uuid.UUID) (*MaintenanceRequest, error) {
	const insert = `
        INSERT INTO maintenance_requests
            (subject, description, type, status, priority, equipment_id, team_id, assigned_to_id, requested_by_id, scheduled_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, insert,
		strings.TrimSpace(input.Subject),
		input.Description,
		input.Type,
		StatusNew,
		input.Priority,
		input.EquipmentID,
		teamID,
		input.AssignedToID,
		requestedByID,
		input.ScheduledDate,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update aplica atualização parcial (exceto status).
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateRequestInput) (*MaintenanceRequest, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.Subject != nil {
		addSet("subject", strings.TrimSpace(*input.Subject))
	}
	if input.Description != nil {
		addSet("description", *input.Description)
	}
	if input.Priority != nil {
		addSet("priority", *input.Priority)
	}
	if input.AssignedToID != nil {
		addSet("assigned_to_id", *input.AssignedToID)
	}
	if input.ScheduledDate != nil {
		addSet("scheduled_date", *input.ScheduledDate)
	}
	if input.Duration != nil {
		addSet("duration", *input.Duration)
	}
	if input.Notes != nil {
		addSet("notes", *input.Notes)
	}

	query := fmt.Sprintf(`
        UPDATE maintenance_requests
        SET %s
        WHERE id = $1
    `, strings.Join(sets, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus troca a raia do chamado dentro da transação informada.
// Chamados resolvidos recebem completed_date.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status, completedAt *time.Time) error {
	const query = `
        UPDATE maintenance_requests
        SET status = $2, completed_date = $3, updated_at = now()
        WHERE id = $1
    `
	tag, err := tx.Exec(ctx, query, id, status, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReassignTeamByEquipment propaga a troca de equipe do equipamento para
// todos os seus chamados, mantendo team_id derivado do equipamento.
func (r *Repository) ReassignTeamByEquipment(ctx context.Context, tx pgx.Tx, equipmentID, teamID uuid.UUID) error {
	const query = `
        UPDATE maintenance_requests
        SET team_id = $2, updated_at = now()
        WHERE equipment_id = $1
    `
	_, err := tx.Exec(ctx, query, equipmentID, teamID)
	return err
}

// StatusCounts agrupa chamados por raia.
func (r *Repository) StatusCounts(ctx context.Context) (map[Status]int, error) {
	const query = `
        SELECT status, count(*)
        FROM maintenance_requests
        GROUP BY status
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[Status]int{StatusNew: 0, StatusInProgress: 0, StatusRepaired: 0, StatusScrap: 0}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// TypeCounts agrupa chamados por tipo.
func (r *Repository) TypeCounts(ctx context.Context) (map[Type]int, error) {
	const query = `
        SELECT type, count(*)
        FROM maintenance_requests
        GROUP BY type
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[Type]int{TypeCorrective: 0, TypePreventive: 0}
	for rows.Next() {
		var typ Type
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		counts[typ] = count
	}
	return counts, rows.Err()
}

// OverdueCount conta chamados agendados no passado e ainda abertos.
func (r *Repository) OverdueCount(ctx context.Context, today time.Time) (int, error) {
	const query = `
        SELECT count(*)
        FROM maintenance_requests
        WHERE scheduled_date IS NOT NULL
          AND scheduled_date < $1
          AND status NOT IN ($2, $3)
    `
	var count int
	err := r.pool.QueryRow(ctx, query, today, StatusRepaired, StatusScrap).Scan(&count)
	return count, err
}

// CompletedSince conta chamados resolvidos a partir da data informada.
func (r *Repository) CompletedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `
        SELECT count(*)
        FROM maintenance_requests
        WHERE completed_date IS NOT NULL AND completed_date >= $1
    `
	var count int
	err := r.pool.QueryRow(ctx, query, since).Scan(&count)
	return count, err
}

// Recent devolve os chamados mais novos.
func (r *Repository) Recent(ctx context.Context, limit int) ([]MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` ORDER BY r.created_at DESC LIMIT $1`
	return r.queryMany(ctx, query, limit)
}

// Upcoming devolve os próximos chamados agendados ainda abertos.
func (r *Repository) Upcoming(ctx context.Context, from time.Time, limit int) ([]MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + `
        WHERE r.scheduled_date IS NOT NULL
          AND r.scheduled_date >= $1
          AND r.status NOT IN ($2, $3)
        ORDER BY r.scheduled_date
        LIMIT $4`
	return r.queryMany(ctx, query, from, StatusRepaired, StatusScrap, limit)
}

// CountEquipment conta os equipamentos cadastrados.
func (r *Repository) CountEquipment(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM equipment`).Scan(&count)
	return count, err
}

func (r *Repository) queryMany(ctx context.Context, query string, args ...any) ([]MaintenanceRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MaintenanceRequest
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
