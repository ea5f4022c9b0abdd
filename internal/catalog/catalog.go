// Package catalog caches the product list so it can be browsed offline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

var ErrOffline = errors.New("catalog refresh needs a connection")

type Service struct {
	remote port.CatalogRemote
	repo   port.ProductRepository
	conn   port.Connectivity
	logger *slog.Logger
}

func NewService(remote port.CatalogRemote, repo port.ProductRepository, conn port.Connectivity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, repo: repo, conn: conn, logger: logger}
}

// Refresh replaces the cached catalog with the server's. The cache is untouched on failure.
func (s *Service) Refresh(ctx context.Context) ([]domain.Product, error) {
	if !s.conn.Online() {
		return nil, ErrOffline
	}

	products, err := s.remote.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote.ListProducts: %w", err)
	}

	if err := s.repo.ReplaceProducts(ctx, products); err != nil {
		s.logger.WarnContext(ctx, "failed to cache catalog", slog.String("error", err.Error()))
	}

	return products, nil
}

// List serves the cached catalog, refreshing first when the cache is empty and the server is reachable.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.ListProducts: %w", err)
	}

	if len(products) == 0 && s.conn.Online() {
		return s.Refresh(ctx)
	}

	return products, nil
}

func (s *Service) Get(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.GetProduct: %w", err)
	}
	return product, nil
}
