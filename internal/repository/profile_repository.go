package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type profileRecord struct {
	Address addressRecord `json:"address"`
}

type profileRepository struct {
	store port.LocalStore
}

func NewProfiles(store port.LocalStore) port.ProfileRepository {
	return &profileRepository{store: store}
}

// GetAddress returns the saved delivery address, or port.ErrNotFound.
func (r *profileRepository) GetAddress(ctx context.Context, ownerID string) (domain.Address, error) {
	if ownerID == "" {
		return domain.Address{}, fmt.Errorf("ownerID is empty")
	}

	raw, err := r.store.Get(ctx, port.CollectionProfile, ownerID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.Address{}, port.ErrNotFound
		}
		return domain.Address{}, fmt.Errorf("store.Get: %w", err)
	}

	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Address{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return rec.Address.toDomain(), nil
}

func (r *profileRepository) SaveAddress(ctx context.Context, ownerID string, address domain.Address) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if address.IsEmpty() {
		return domain.ErrMissingAddress
	}

	raw, err := json.Marshal(profileRecord{Address: toAddressRecord(address)})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.store.Put(ctx, port.CollectionProfile, ownerID, raw); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	return nil
}
