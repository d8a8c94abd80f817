package repository

import (
	"context"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

type ItemRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// Upsert creates the item or updates price and store of an existing one.
	Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteByName(ctx context.Context, name string) error
}

type StoreRepository interface {
	// GetByName returns the store with its items loaded.
	GetByName(ctx context.Context, name string) (*domain.Store, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*domain.Store, error)
	Create(ctx context.Context, name string) (*domain.Store, error)
	DeleteByName(ctx context.Context, name string) error
}
