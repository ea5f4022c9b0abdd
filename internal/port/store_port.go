package port

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Collection names a bucket of the local persistent store.
type Collection string

const (
	CollectionCart     Collection = "cart"
	CollectionProducts Collection = "products"
	CollectionOrders   Collection = "orders"
	CollectionProfile  Collection = "profile"
)

var Collections = []Collection{CollectionCart, CollectionProducts, CollectionOrders, CollectionProfile}

func (c Collection) Valid() bool {
	switch c {
	case CollectionCart, CollectionProducts, CollectionOrders, CollectionProfile:
		return true
	default:
		return false
	}
}

type Record struct {
	Key   string
	Value []byte
}

// LocalStore is a collection-scoped key/value mirror. Each call is atomic on its own;
// nothing spans more than one collection.
type LocalStore interface {
	Put(ctx context.Context, collection Collection, key string, value []byte) error
	Get(ctx context.Context, collection Collection, key string) ([]byte, error)
	Delete(ctx context.Context, collection Collection, key string) error
	GetAll(ctx context.Context, collection Collection) ([]Record, error)
	Clear(ctx context.Context, collection Collection) error
	ReplaceAll(ctx context.Context, collection Collection, records []Record) error
}
