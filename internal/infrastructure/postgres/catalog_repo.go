package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, price, store_id FROM items WHERE name = $1`, name)
	return scanItem(row)
}

func (r *ItemRepository) List(ctx context.Context) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, store_id FROM items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO items (name, price, store_id) VALUES ($1, $2, $3)
		RETURNING id, name, price, store_id`,
		item.Name, item.Price, item.StoreID)

	created, err := scanItem(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrItemExists
		}
		return nil, err
	}
	return created, nil
}

func (r *ItemRepository) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO items (name, price, store_id) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET price = EXCLUDED.price, store_id = EXCLUDED.store_id
		RETURNING id, name, price, store_id`,
		item.Name, item.Price, item.StoreID)
	return scanItem(row)
}

func (r *ItemRepository) DeleteByName(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var it domain.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Price, &it.StoreID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &it, nil
}

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	var s domain.Store
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM stores WHERE name = $1`, name).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}

	items, err := r.items(ctx, `WHERE store_id = $1`, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

func (r *StoreRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check store: %w", err)
	}
	return ok, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	stores := []*domain.Store{}
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	byStore, err := r.items(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		s.Items = byStore[s.ID]
	}
	return stores, nil
}

func (r *StoreRepository) Create(ctx context.Context, name string) (*domain.Store, error) {
	var s domain.Store
	err := r.pool.QueryRow(ctx,
		`INSERT INTO stores (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrStoreExists
		}
		return nil, fmt.Errorf("create store: %w", err)
	}
	s.Items = []*domain.Item{}
	return &s, nil
}

func (r *StoreRepository) DeleteByName(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

// items loads items grouped by store ID, optionally filtered by where.
func (r *StoreRepository) items(ctx context.Context, where string, args ...any) (map[int64][]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, store_id FROM items `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list store items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]*domain.Item)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.StoreID] = append(out[it.StoreID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store items: %w", err)
	}
	return out, nil
}
