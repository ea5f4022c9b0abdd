package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

// Add appends a new line with a temporary id. A zero quantity means one.
// Online the line is sent to the server and replaced by the confirmed line;
// a failed create removes it again.
func (s *Store) Add(ctx context.Context, productID string, variant domain.Variant, quantity int) (domain.Result, error) {
	if quantity == 0 {
		quantity = 1
	}

	line := domain.CartLine{
		ID:        s.newID(),
		ProductID: strings.TrimSpace(productID),
		Quantity:  quantity,
		Variant:   variant,
		State:     domain.StatePending,
		UpdatedAt: s.now(),
	}
	if err := line.Validate(); err != nil {
		return domain.Result{}, s.rejectInvalid(ctx, err)
	}

	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	s.snapshot.Lines = append(s.snapshot.Lines, line)
	s.persistLocked(ctx)

	if !s.reachable(ctx) {
		s.mu.Unlock()
		return domain.Result{Line: line, Status: domain.ResultQueued}, nil
	}

	s.inflight[line.ID] = struct{}{}
	s.mu.Unlock()

	confirmed, err := s.remote.CreateLine(ctx, line)

	s.mu.Lock()
	delete(s.inflight, line.ID)

	if err != nil {
		if idx := s.snapshot.IndexOf(line.ID); idx >= 0 {
			s.snapshot.Lines = slices.Delete(s.snapshot.Lines, idx, idx+1)
		}
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.notify(ctx, domain.LevelError, domain.KindMutationFailed, fmt.Sprintf("Could not add %s to the cart", line.ProductID))
		return domain.Result{Line: line, Status: domain.ResultRolledBack}, fmt.Errorf("remote.CreateLine: %w", err)
	}

	s.settleLocked(line.ID, confirmed)
	s.persistLocked(ctx)
	settled := s.snapshot.Lines[s.snapshot.IndexOf(confirmed.ID)]
	s.mu.Unlock()

	return domain.Result{Line: settled, Status: domain.ResultConfirmed}, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) (domain.Result, error) {
	if quantity <= 0 {
		return s.Remove(ctx, lineID)
	}

	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	idx, err := s.lineLocked(lineID)
	if err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	prior := s.snapshot.Lines[idx]
	updated := prior
	updated.Quantity = quantity
	updated.State = domain.StatePending
	updated.UpdatedAt = s.now()

	s.snapshot.Lines[idx] = updated
	s.persistLocked(ctx)

	if !s.reachable(ctx) {
		s.mu.Unlock()
		return domain.Result{Line: updated, Status: domain.ResultQueued}, nil
	}

	s.inflight[lineID] = struct{}{}
	s.mu.Unlock()

	confirmed, err := s.pushLine(ctx, updated)

	s.mu.Lock()
	delete(s.inflight, lineID)

	if err != nil {
		if i := s.snapshot.IndexOf(lineID); i >= 0 {
			s.snapshot.Lines[i] = prior
		}
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.notify(ctx, domain.LevelError, domain.KindMutationFailed, fmt.Sprintf("Could not change quantity of %s", prior.ProductID))
		return domain.Result{Line: prior, Status: domain.ResultRolledBack}, err
	}

	s.settleLocked(lineID, confirmed)
	s.persistLocked(ctx)
	settled := s.snapshot.Lines[s.snapshot.IndexOf(confirmed.ID)]
	s.mu.Unlock()

	return domain.Result{Line: settled, Status: domain.ResultConfirmed}, nil
}

// Remove deletes a line. A line the server never saw is dropped locally only.
// Offline, server lines leave a tombstone for Sync.
func (s *Store) Remove(ctx context.Context, lineID string) (domain.Result, error) {
	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	idx, err := s.lineLocked(lineID)
	if err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	prior := s.snapshot.Lines[idx]
	s.snapshot.Lines = slices.Delete(s.snapshot.Lines, idx, idx+1)

	if prior.IsTemporary() {
		s.persistLocked(ctx)
		s.mu.Unlock()
		return domain.Result{Line: prior, Status: domain.ResultConfirmed}, nil
	}

	if !s.reachable(ctx) {
		s.snapshot.Removed = append(s.snapshot.Removed, prior.ID)
		s.persistLocked(ctx)
		s.mu.Unlock()
		return domain.Result{Line: prior, Status: domain.ResultQueued}, nil
	}

	s.persistLocked(ctx)
	s.inflight[lineID] = struct{}{}
	s.mu.Unlock()

	err = s.remote.DeleteLine(ctx, lineID)
	if errors.Is(err, port.ErrNotFound) {
		err = nil
	}

	s.mu.Lock()
	delete(s.inflight, lineID)

	if err != nil {
		pos := min(idx, len(s.snapshot.Lines))
		s.snapshot.Lines = slices.Insert(s.snapshot.Lines, pos, prior)
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.notify(ctx, domain.LevelError, domain.KindMutationFailed, fmt.Sprintf("Could not remove %s from the cart", prior.ProductID))
		return domain.Result{Line: prior, Status: domain.ResultRolledBack}, fmt.Errorf("remote.DeleteLine: %w", err)
	}

	s.mu.Unlock()

	return domain.Result{Line: prior, Status: domain.ResultConfirmed}, nil
}

// Clear empties the cart. It is rejected while any line has a call in flight.
func (s *Store) Clear(ctx context.Context) (domain.Result, error) {
	s.mu.Lock()
	if err := s.checkExclusiveLocked(); err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	prior := s.snapshot.Clone()
	s.snapshot.Lines = nil

	if !s.reachable(ctx) {
		s.snapshot.Cleared = true
		s.snapshot.Removed = nil
		s.persistLocked(ctx)
		s.mu.Unlock()
		return domain.Result{Status: domain.ResultQueued}, nil
	}

	s.persistLocked(ctx)
	s.exclusive = "clear"
	s.mu.Unlock()

	err := s.remote.ClearCart(ctx)

	s.mu.Lock()
	s.exclusive = ""

	if err != nil {
		s.snapshot = prior
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.notify(ctx, domain.LevelError, domain.KindMutationFailed, "Could not clear the cart")
		return domain.Result{Status: domain.ResultRolledBack}, fmt.Errorf("remote.ClearCart: %w", err)
	}

	s.snapshot.Cleared = false
	s.snapshot.Removed = nil
	s.persistLocked(ctx)
	s.mu.Unlock()

	return domain.Result{Status: domain.ResultConfirmed}, nil
}
