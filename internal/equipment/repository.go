package equipment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de equipamentos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de equipamentos.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const equipmentColumns = `id, name, description, location, status, team_id, serial_number, manufacturer, model, purchase_date, last_maintenance_date, created_at, updated_at`

func scanEquipment(row pgx.Row) (*Equipment, error) {
	var e Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Status, &e.TeamID,
		&e.SerialNumber, &e.Manufacturer, &e.Model, &e.PurchaseDate, &e.LastMaintenanceDate,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByID busca equipamento pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Equipment, error) {
	const query = `
        SELECT ` + equipmentColumns + `
        FROM equipment
        WHERE id = $1
    `
	row := r.pool.QueryRow(ctx, query, id)
	return scanEquipment(row)
}

// List devolve equipamentos aplicando os filtros informados.
func (r *Repository) List(ctx context.Context, filters Filters) ([]Equipment, error) {
	query := `
        SELECT ` + equipmentColumns + `
        FROM equipment
        WHERE 1=1
    `
	var args []any

	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.TeamID != nil {
		args = append(args, *filters.TeamID)
		query += fmt.Sprintf(" AND team_id = $%d", len(args))
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		query += fmt.Sprintf(" AND (lower(name) LIKE $%d OR lower(location) LIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Create insere um novo equipamento com status operacional.
func (r *Repository) Create(ctx context.Context, input CreateEquipmentInput) (*Equipment, error) {
	const query = `
        INSERT INTO equipment (name, description, location, status, team_id, serial_number, manufacturer, model, purchase_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + equipmentColumns + `
    `
	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name),
		input.Description,
		strings.TrimSpace(input.Location),
		StatusOperational,
		input.TeamID,
		input.SerialNumber,
		input.Manufacturer,
		input.Model,
		input.PurchaseDate,
	)
	return scanEquipment(row)
}

func buildUpdate(id uuid.UUID, input UpdateEquipmentInput) (string, []any) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.Name != nil {
		addSet("name", strings.TrimSpace(*input.Name))
	}
	if input.Description != nil {
		addSet("description", *input.Description)
	}
	if input.Location != nil {
		addSet("location", strings.TrimSpace(*input.Location))
	}
	if input.Status != nil {
		addSet("status", *input.Status)
	}
	if input.TeamID != nil {
		addSet("team_id", *input.TeamID)
	}

	query := fmt.Sprintf(`
        UPDATE equipment
        SET %s
        WHERE id = $1
        RETURNING `+equipmentColumns+`
    `, strings.Join(sets, ", "))

	return query, args
}

// Update aplica atualização parcial e devolve o registro atualizado.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateEquipmentInput) (*Equipment, error) {
	query, args := buildUpdate(id, input)
	row := r.pool.QueryRow(ctx, query, args...)
	return scanEquipment(row)
}

// UpdateTx aplica a mesma atualização parcial dentro da transação
// informada. Usado quando a troca de equipe precisa cascatear para os
// chamados do equipamento no mesmo commit.
func (r *Repository) UpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, input UpdateEquipmentInput) (*Equipment, error) {
	query, args := buildUpdate(id, input)
	row := tx.QueryRow(ctx, query, args...)
	return scanEquipment(row)
}

// MarkScrapped troca o status para sucateado dentro da transação informada.
func (r *Repository) MarkScrapped(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	const query = `
        UPDATE equipment
        SET status = $2, updated_at = now()
        WHERE id = $1
    `
	tag, err := tx.Exec(ctx, query, id, StatusScrapped)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchMaintenance registra a data da última manutenção concluída.
func (r *Repository) TouchMaintenance(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	const query = `
        UPDATE equipment
        SET last_maintenance_date = now(), updated_at = now()
        WHERE id = $1
    `
	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
