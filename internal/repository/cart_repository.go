package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type cartRepository struct {
	store port.LocalStore
}

func NewCart(store port.LocalStore) port.CartRepository {
	return &cartRepository{store: store}
}

// GetCart returns the owner's persisted snapshot, or an empty one if none was saved yet.
func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.CartSnapshot, error) {
	if ownerID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("ownerID is empty")
	}

	raw, err := r.store.Get(ctx, port.CollectionCart, ownerID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.CartSnapshot{OwnerID: ownerID}, nil
		}
		return domain.CartSnapshot{}, fmt.Errorf("store.Get: %w", err)
	}

	var rec cartRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	lines, err := mapCartLineRecords(rec.Lines)
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("mapCartLineRecords: %w", err)
	}

	return domain.CartSnapshot{
		OwnerID:   ownerID,
		Lines:     lines,
		Removed:   rec.Removed,
		Cleared:   rec.Cleared,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// SaveCart overwrites the owner's snapshot wholesale.
func (r *cartRepository) SaveCart(ctx context.Context, cart domain.CartSnapshot) error {
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	raw, err := json.Marshal(cartRecord{
		OwnerID:   cart.OwnerID,
		Lines:     toCartLineRecords(cart.Lines),
		Removed:   cart.Removed,
		Cleared:   cart.Cleared,
		UpdatedAt: cart.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.store.Put(ctx, port.CollectionCart, cart.OwnerID, raw); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	return nil
}
