package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type productRepository struct {
	store port.LocalStore
}

func NewProducts(store port.LocalStore) port.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	records := make([]port.Record, 0, len(products))

	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("productID is empty")
		}

		raw, err := json.Marshal(toProductRecord(p))
		if err != nil {
			return fmt.Errorf("json.Marshal[%s]: %w", p.ID, err)
		}
		records = append(records, port.Record{Key: p.ID, Value: raw})
	}

	if err := r.store.ReplaceAll(ctx, port.CollectionProducts, records); err != nil {
		return fmt.Errorf("store.ReplaceAll: %w", err)
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := r.store.GetAll(ctx, port.CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("store.GetAll: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, record := range records {
		product, err := decodeProduct(record.Value)
		if err != nil {
			return nil, fmt.Errorf("decodeProduct[%s]: %w", record.Key, err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if productID == "" {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	raw, err := r.store.Get(ctx, port.CollectionProducts, productID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.Product{}, port.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("store.Get: %w", err)
	}

	return decodeProduct(raw)
}

func decodeProduct(raw []byte) (domain.Product, error) {
	var rec productRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Product{}, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return rec.toDomain()
}
