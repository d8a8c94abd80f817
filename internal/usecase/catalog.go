package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/repository"
)

type CatalogUsecase struct {
	items  repository.ItemRepository
	stores repository.StoreRepository
}

func NewCatalogUsecase(items repository.ItemRepository, stores repository.StoreRepository) *CatalogUsecase {
	return &CatalogUsecase{items: items, stores: stores}
}

func (u *CatalogUsecase) GetItem(ctx context.Context, name string) (*domain.Item, error) {
	item, err := u.items.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (u *CatalogUsecase) ListItems(ctx context.Context) ([]*domain.Item, error) {
	items, err := u.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CreateItem fails with ErrItemExists when the name is taken and
// ErrStoreNotFound when the store does not exist.
func (u *CatalogUsecase) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	_, err := u.items.GetByName(ctx, item.Name)
	switch {
	case err == nil:
		return nil, domain.ErrItemExists
	case !errors.Is(err, domain.ErrItemNotFound):
		return nil, fmt.Errorf("find item: %w", err)
	}
	if err := u.requireStore(ctx, item.StoreID); err != nil {
		return nil, err
	}
	created, err := u.items.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

func (u *CatalogUsecase) PutItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := u.requireStore(ctx, item.StoreID); err != nil {
		return nil, err
	}
	saved, err := u.items.Upsert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("upsert item: %w", err)
	}
	return saved, nil
}

func (u *CatalogUsecase) DeleteItem(ctx context.Context, name string) error {
	if err := u.items.DeleteByName(ctx, name); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (u *CatalogUsecase) requireStore(ctx context.Context, id int64) error {
	ok, err := u.stores.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	if !ok {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (u *CatalogUsecase) GetStore(ctx context.Context, name string) (*domain.Store, error) {
	store, err := u.stores.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return store, nil
}

func (u *CatalogUsecase) ListStores(ctx context.Context) ([]*domain.Store, error) {
	stores, err := u.stores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

func (u *CatalogUsecase) CreateStore(ctx context.Context, name string) (*domain.Store, error) {
	store, err := u.stores.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

func (u *CatalogUsecase) DeleteStore(ctx context.Context, name string) error {
	if err := u.stores.DeleteByName(ctx, name); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}
