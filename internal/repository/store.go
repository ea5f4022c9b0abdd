package repository

import (
	"fmt"

	"github.com/nikolayk812/lpg-cart/internal/port"
)

func validateKey(collection port.Collection, key string) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}
	if key == "" {
		return fmt.Errorf("key is empty")
	}
	return nil
}

func unknownCollection(collection port.Collection) error {
	return fmt.Errorf("collection[%s]: %w", collection, port.ErrUnknownCollection)
}
