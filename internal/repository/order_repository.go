package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type orderRepository struct {
	store port.LocalStore
}

func NewOrders(store port.LocalStore) port.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	if order.ID == "" {
		return fmt.Errorf("orderID is empty")
	}
	if order.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	raw, err := json.Marshal(toOrderRecord(order))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.store.Put(ctx, port.CollectionOrders, order.ID, raw); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	return nil
}

// ListOrders returns the owner's cached orders, newest first.
func (r *orderRepository) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	records, err := r.store.GetAll(ctx, port.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("store.GetAll: %w", err)
	}

	var orders []domain.Order
	for _, record := range records {
		var rec orderRecord
		if err := json.Unmarshal(record.Value, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal[%s]: %w", record.Key, err)
		}
		if rec.OwnerID != ownerID {
			continue
		}

		order, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("toDomain: %w", err)
		}
		orders = append(orders, order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}
