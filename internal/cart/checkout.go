package cart

import (
	"context"
	"fmt"
	"slices"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

// Checkout places an order for the whole cart and empties it.
// The cart must be open, non-empty, fully confirmed and reachable.
func (s *Store) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	if s.orders == nil {
		return domain.Order{}, ErrNoCheckout
	}

	if req.Address.IsEmpty() {
		return domain.Order{}, s.rejectInvalid(ctx, ErrMissingAddress)
	}
	if err := req.Schedule.Validate(); err != nil {
		return domain.Order{}, s.rejectInvalid(ctx, err)
	}
	if req.Schedule.Frequency == "" {
		req.Schedule.Frequency = domain.FrequencyOnce
	}

	s.mu.Lock()
	if err := s.checkExclusiveLocked(); err != nil {
		s.mu.Unlock()
		return domain.Order{}, err
	}
	if len(s.snapshot.Lines) == 0 {
		s.mu.Unlock()
		return domain.Order{}, s.rejectInvalid(ctx, ErrEmptyCart)
	}
	if s.snapshot.HasOutbox() || slices.ContainsFunc(s.snapshot.Lines, func(l domain.CartLine) bool {
		return l.State != domain.StateConfirmed
	}) {
		s.mu.Unlock()
		return domain.Order{}, s.rejectInvalid(ctx, ErrCartNotSynced)
	}
	if !s.reachable(ctx) {
		s.mu.Unlock()
		s.notify(ctx, domain.LevelBlocking, domain.KindValidationFailed, "Checkout needs a connection to the server")
		return domain.Order{}, ErrOffline
	}

	s.exclusive = "checkout"
	ownerID := s.snapshot.OwnerID
	lines := slices.Clone(s.snapshot.Lines)
	s.mu.Unlock()

	order, err := s.orders.CreateOrder(ctx, port.OrderRequest{
		Lines:    lines,
		Address:  req.Address,
		Schedule: req.Schedule,
	})
	if err != nil {
		s.mu.Lock()
		s.exclusive = ""
		s.mu.Unlock()

		s.notify(ctx, domain.LevelError, domain.KindMutationFailed, "Could not place the order")
		return domain.Order{}, fmt.Errorf("orders.CreateOrder: %w", err)
	}
	order.OwnerID = ownerID

	s.mu.Lock()
	s.snapshot.Lines = nil
	s.persistLocked(ctx)
	s.exclusive = ""
	s.mu.Unlock()

	if s.orderRepo != nil {
		if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
			s.logger.WarnContext(ctx, "failed to cache order locally", "order_id", order.ID, "error", err)
		}
	}

	s.notify(ctx, domain.LevelInfo, domain.KindOrderPlaced, fmt.Sprintf("Order %s placed", order.ID))

	return order, nil
}
