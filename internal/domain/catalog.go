package domain

import "errors"

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrItemExists    = errors.New("an item with that name already exists")
	ErrStoreNotFound = errors.New("store not found")
	ErrStoreExists   = errors.New("a store with that name already exists")
)

type Store struct {
	ID    int64
	Name  string
	Items []*Item
}

type Item struct {
	ID      int64
	Name    string
	Price   float64
	StoreID int64
}
