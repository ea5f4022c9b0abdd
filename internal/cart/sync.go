package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

// Sync replays the offline outbox and then overwrites the cart with the server's copy.
// Lines the server refused for good stay in the cart as failed.
// Progress made before an error is kept so a retry does not push twice.
func (s *Store) Sync(ctx context.Context) (domain.SyncReport, error) {
	if !s.conn.Online() {
		return domain.SyncReport{}, ErrOffline
	}
	if _, ok := s.creds.Token(ctx); !ok {
		return domain.SyncReport{}, ErrUnauthenticated
	}

	s.mu.Lock()
	if err := s.checkExclusiveLocked(); err != nil {
		s.mu.Unlock()
		return domain.SyncReport{}, err
	}
	s.exclusive = "sync"
	work := s.snapshot.Clone()
	s.mu.Unlock()

	report, err := s.replay(ctx, &work)
	if err != nil {
		s.abortSync(ctx, work, err)
		return report, err
	}

	serverLines, err := s.remote.ListCart(ctx)
	if err != nil {
		err = fmt.Errorf("remote.ListCart: %w", err)
		s.abortSync(ctx, work, err)
		return report, err
	}

	lines := mergeFailed(serverLines, work.Lines)

	s.mu.Lock()
	s.snapshot.Lines = lines
	s.snapshot.Removed = nil
	s.snapshot.Cleared = false
	s.persistLocked(ctx)
	s.exclusive = ""
	s.mu.Unlock()

	report.Lines = len(lines)
	if report.Failed > 0 {
		s.notify(ctx, domain.LevelError, domain.KindSyncFailed,
			fmt.Sprintf("%d cart change(s) were refused by the server", report.Failed))
	}

	return report, nil
}

func (s *Store) abortSync(ctx context.Context, work domain.CartSnapshot, err error) {
	s.mu.Lock()
	s.snapshot = work
	s.persistLocked(ctx)
	s.exclusive = ""
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "cart sync failed", "owner_id", work.OwnerID, "error", err)
	s.notify(ctx, domain.LevelError, domain.KindSyncFailed, "Could not sync the cart with the server")
}

// mergeFailed returns the server's lines with the local failed lines the server does
// not know about. A failed line goes right after the local line that preceded it,
// or first when none of its predecessors survived.
func mergeFailed(serverLines, local []domain.CartLine) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(serverLines)+len(local))
	for _, l := range serverLines {
		l.State = domain.StateConfirmed
		lines = append(lines, l)
	}

	indexOf := func(id string) int {
		return slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ID == id })
	}

	for i, l := range local {
		if l.State != domain.StateFailed || indexOf(l.ID) >= 0 {
			continue
		}

		pos := 0
		for j := i - 1; j >= 0; j-- {
			if k := indexOf(local[j].ID); k >= 0 {
				pos = k + 1
				break
			}
		}
		lines = slices.Insert(lines, pos, l)
	}

	return lines
}

// replay pushes the outbox in order: the offline clear, then tombstones, then pending lines.
func (s *Store) replay(ctx context.Context, work *domain.CartSnapshot) (domain.SyncReport, error) {
	var report domain.SyncReport

	if work.Cleared {
		if err := s.remote.ClearCart(ctx); err != nil {
			return report, fmt.Errorf("remote.ClearCart: %w", err)
		}
		work.Cleared = false
	}

	for len(work.Removed) > 0 {
		id := work.Removed[0]
		if err := s.remote.DeleteLine(ctx, id); err != nil && !errors.Is(err, port.ErrNotFound) {
			return report, fmt.Errorf("remote.DeleteLine[%s]: %w", id, err)
		}
		work.Removed = work.Removed[1:]
		report.Removed++
	}

	for i := range work.Lines {
		line := work.Lines[i]
		if line.State != domain.StatePending {
			continue
		}

		confirmed, err := s.pushLine(ctx, line)

		switch {
		case errors.Is(err, port.ErrRejected):
			s.logger.WarnContext(ctx, "server refused queued cart line",
				"line_id", line.ID, "product_id", line.ProductID, "error", err)
			work.Lines[i].State = domain.StateFailed
			report.Failed++
		case err != nil:
			return report, fmt.Errorf("push line[%s]: %w", line.ID, err)
		default:
			confirmed.State = domain.StateConfirmed
			work.Lines[i] = confirmed
			report.Pushed++
		}
	}

	return report, nil
}
