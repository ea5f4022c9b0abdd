// Package cart keeps the shopping cart usable offline. Every mutation is applied to
// memory and the local store first and confirmed with the order-service afterwards;
// a refused change is compensated so memory, the local store and the server agree.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

var _ port.CartService = (*Store)(nil)

type Store struct {
	repo     port.CartRepository
	remote   port.CartRemote
	conn     port.Connectivity
	creds    port.Credentials
	notifier port.Notifier

	orders    port.OrderRemote
	orderRepo port.OrderRepository

	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.Mutex
	opened   bool
	snapshot domain.CartSnapshot
	// inflight holds line ids with a remote call outstanding.
	inflight map[string]struct{}
	// exclusive names the whole-cart operation in progress, if any.
	exclusive string
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithNotifier(n port.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithOrders enables Checkout. orderRepo may be nil when placed orders are not cached.
func WithOrders(orders port.OrderRemote, orderRepo port.OrderRepository) Option {
	return func(s *Store) {
		s.orders = orders
		s.orderRepo = orderRepo
	}
}

func NewStore(repo port.CartRepository, remote port.CartRemote, conn port.Connectivity, creds port.Credentials, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("cart repository is nil")
	}
	if remote == nil {
		return nil, errors.New("cart remote is nil")
	}
	if conn == nil {
		return nil, errors.New("connectivity is nil")
	}
	if creds == nil {
		return nil, errors.New("credentials are nil")
	}

	s := &Store{
		repo:     repo,
		remote:   remote,
		conn:     conn,
		creds:    creds,
		notifier: discardNotifier{},
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newTempID,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Open loads the owner's persisted cart. A local store failure is logged and the cart starts empty.
func (s *Store) Open(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return errors.New("ownerID is empty")
	}

	snapshot, err := s.repo.GetCart(ctx, ownerID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load cart from local store", "owner_id", ownerID, "error", err)
		snapshot = domain.CartSnapshot{OwnerID: ownerID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exclusive != "" || len(s.inflight) > 0 {
		return ErrBusy
	}

	s.snapshot = snapshot
	s.opened = true

	return nil
}

// Lines returns a copy of the cart lines in order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.snapshot.Lines)
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot.Clone()
}

// reachable reports whether a remote call should be attempted right now.
func (s *Store) reachable(ctx context.Context) bool {
	if !s.conn.Online() {
		return false
	}
	_, ok := s.creds.Token(ctx)
	return ok
}

// checkMutableLocked guards per-line mutations.
func (s *Store) checkMutableLocked() error {
	if !s.opened {
		return ErrNotOpen
	}
	if s.exclusive != "" {
		return ErrBusy
	}
	return nil
}

// checkExclusiveLocked guards whole-cart operations.
func (s *Store) checkExclusiveLocked() error {
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if len(s.inflight) > 0 {
		return ErrBusy
	}
	return nil
}

func (s *Store) lineLocked(lineID string) (int, error) {
	idx := s.snapshot.IndexOf(lineID)
	if idx < 0 {
		return -1, fmt.Errorf("line[%s]: %w", lineID, domain.ErrLineNotFound)
	}
	if _, busy := s.inflight[lineID]; busy {
		return -1, fmt.Errorf("line[%s]: %w", lineID, ErrLineBusy)
	}
	return idx, nil
}

// persistLocked writes the snapshot through. Failures leave memory authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	s.snapshot.UpdatedAt = s.now()

	if err := s.repo.SaveCart(ctx, s.snapshot.Clone()); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart to local store",
			"owner_id", s.snapshot.OwnerID, "error", err)
	}
}

// settleLocked puts a server-confirmed line in place of lineID. A line already holding
// the confirmed id absorbs it so ids stay unique.
func (s *Store) settleLocked(lineID string, confirmed domain.CartLine) {
	confirmed.State = domain.StateConfirmed
	if confirmed.UpdatedAt.IsZero() {
		confirmed.UpdatedAt = s.now()
	}

	idx := s.snapshot.IndexOf(lineID)
	if confirmed.ID != lineID {
		if existing := s.snapshot.IndexOf(confirmed.ID); existing >= 0 {
			s.snapshot.Lines[existing] = confirmed
			if idx >= 0 {
				s.snapshot.Lines = slices.Delete(s.snapshot.Lines, idx, idx+1)
			}
			return
		}
	}

	if idx < 0 {
		s.snapshot.Lines = append(s.snapshot.Lines, confirmed)
		return
	}
	s.snapshot.Lines[idx] = confirmed
}

// pushLine sends a local line to the server. A create whose idempotency key was
// already used answers with the first line, so its quantity is corrected with an update.
func (s *Store) pushLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	if !line.IsTemporary() {
		confirmed, err := s.remote.UpdateLine(ctx, line)
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("remote.UpdateLine: %w", err)
		}
		return confirmed, nil
	}

	confirmed, err := s.remote.CreateLine(ctx, line)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("remote.CreateLine: %w", err)
	}
	if confirmed.Quantity == line.Quantity {
		return confirmed, nil
	}

	s.logger.InfoContext(ctx, "server returned an earlier create, correcting quantity",
		"temp_id", line.ID, "line_id", confirmed.ID,
		"server_quantity", confirmed.Quantity, "quantity", line.Quantity)

	confirmed.Quantity = line.Quantity
	corrected, err := s.remote.UpdateLine(ctx, confirmed)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("remote.UpdateLine[%s]: %w", confirmed.ID, err)
	}
	return corrected, nil
}

func (s *Store) notify(ctx context.Context, level domain.NotificationLevel, kind domain.NotificationKind, msg string) {
	s.notifier.Notify(ctx, domain.Notification{Level: level, Kind: kind, Message: msg})
}

func (s *Store) rejectInvalid(ctx context.Context, err error) error {
	s.notify(ctx, domain.LevelBlocking, domain.KindValidationFailed, err.Error())
	return err
}

func newTempID() string {
	return domain.TempIDPrefix + uuid.Must(uuid.NewV7()).String()
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, domain.Notification) {}
