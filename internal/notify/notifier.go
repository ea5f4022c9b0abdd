// Package notify delivers user-facing notifications.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

var (
	_ port.Notifier = (*LogNotifier)(nil)
	_ port.Notifier = (*Recorder)(nil)
	_ port.Notifier = Multi(nil)
)

// LogNotifier writes notifications through slog.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) {
	level := slog.LevelInfo
	switch note.Level {
	case domain.LevelError:
		level = slog.LevelError
	case domain.LevelBlocking:
		level = slog.LevelWarn
	}
	n.logger.LogAttrs(ctx, level, note.Message,
		slog.String("notification.kind", string(note.Kind)),
		slog.String("notification.level", string(note.Level)),
	)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *Recorder) Notify(_ context.Context, note domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
}

func (r *Recorder) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notes)
}

func (r *Recorder) Count(kind domain.NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans a notification out to several notifiers.
type Multi []port.Notifier

func (m Multi) Notify(ctx context.Context, note domain.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, note)
		}
	}
}
