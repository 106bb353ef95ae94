package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errRefreshNotFound = errors.New("refresh token não encontrado")

// RefreshToken representa o registro persistido de um refresh token.
type RefreshToken struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// RefreshRepository persiste refresh tokens no Postgres.
type RefreshRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshRepository cria o repositório.
func NewRefreshRepository(pool *pgxpool.Pool) *RefreshRepository {
	return &RefreshRepository{pool: pool}
}

// GetByHash busca registro pelo hash do token.
func (r *RefreshRepository) GetByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	var token RefreshToken
	err := r.pool.QueryRow(ctx, `
        SELECT id, subject, token_hash, expires_at, revoked, created_at
        FROM refresh_tokens
        WHERE token_hash = $1
    `, tokenHash).Scan(&token.ID, &token.Subject, &token.TokenHash, &token.ExpiresAt, &token.Revoked, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, errRefreshNotFound
		}
		return RefreshToken{}, err
	}
	return token, nil
}

// Insert grava novo refresh token.
func (r *RefreshRepository) Insert(ctx context.Context, token RefreshToken) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO refresh_tokens (id, subject, token_hash, expires_at, revoked, created_at)
        VALUES ($1, $2, $3, $4, false, $5)
    `, token.ID, token.Subject, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	return err
}

// InvalidateOthers revoga todos os tokens do sujeito exceto o informado.
func (r *RefreshRepository) InvalidateOthers(ctx context.Context, subject uuid.UUID, keepHash string) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE refresh_tokens
        SET revoked = true
        WHERE subject = $1 AND token_hash <> $2 AND revoked = false
    `, subject, keepHash)
	return err
}

// Revoke marca o token como revogado.
func (r *RefreshRepository) Revoke(ctx context.Context, tokenHash string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1
    `, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errRefreshNotFound
	}
	return nil
}
