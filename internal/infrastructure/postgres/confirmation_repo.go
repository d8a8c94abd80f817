package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const confirmationColumns = `id, user_id, code, created_at, expires_at, confirmed`

type ConfirmationRepository struct {
	pool *pgxpool.Pool
}

func NewConfirmationRepository(pool *pgxpool.Pool) *ConfirmationRepository {
	return &ConfirmationRepository{pool: pool}
}

func (r *ConfirmationRepository) Create(ctx context.Context, c *domain.Confirmation) (*domain.Confirmation, error) {
	query := `
		INSERT INTO confirmations (id, user_id, code, created_at, expires_at, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + confirmationColumns

	row := r.pool.QueryRow(ctx, query, c.ID, c.UserID, c.Code, c.CreatedAt, c.ExpiresAt, c.Confirmed)
	return scanConfirmation(row)
}

func (r *ConfirmationRepository) FindByID(ctx context.Context, id string) (*domain.Confirmation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+confirmationColumns+` FROM confirmations WHERE id = $1`, id)
	return scanConfirmation(row)
}

func (r *ConfirmationRepository) MostRecent(ctx context.Context, userID int64) (*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE user_id = $1
		ORDER BY created_at DESC, expires_at DESC
		LIMIT 1`

	row := r.pool.QueryRow(ctx, query, userID)
	return scanConfirmation(row)
}

func (r *ConfirmationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE user_id = $1
		ORDER BY expires_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate confirmations: %w", err)
	}
	return out, nil
}

func (r *ConfirmationRepository) ForceExpire(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE confirmations SET expires_at = $2 WHERE id = $1 AND expires_at > $2`,
		id, at)
	if err != nil {
		return fmt.Errorf("force expire confirmation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already expired; only the former is an error.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Confirm flips the confirmed flag and promotes the temporary password in one transaction.
func (r *ConfirmationRepository) Confirm(ctx context.Context, id string) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var userID int64
	err = tx.QueryRow(ctx,
		`UPDATE confirmations SET confirmed = TRUE WHERE id = $1 RETURNING user_id`, id,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConfirmationNotFound
		}
		return fmt.Errorf("mark confirmed: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users
		SET password_hash = temporary_password_hash, temporary_password_hash = NULL
		WHERE id = $1 AND temporary_password_hash IS NOT NULL`, userID,
	); err != nil {
		return fmt.Errorf("promote temporary password: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanConfirmation(row rowScanner) (*domain.Confirmation, error) {
	var c domain.Confirmation
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.CreatedAt, &c.ExpiresAt, &c.Confirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConfirmationNotFound
		}
		return nil, fmt.Errorf("scan confirmation: %w", err)
	}
	return &c, nil
}
