package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nikolayk812/lpg-cart/internal/connectivity"
	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type Subscriber interface {
	Subscribe(fn connectivity.Listener) func()
}

// SyncOnReconnect tells the user about connectivity transitions and syncs svc after
// every reconnect. The reconnect notice is sent before the sync; a failed sync reports itself.
// The returned function unsubscribes.
func SyncOnReconnect(ctx context.Context, monitor Subscriber, svc port.CartService, notifier port.Notifier, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}

	return monitor.Subscribe(func(event connectivity.Event) {
		switch event {
		case connectivity.EventOffline:
			notifier.Notify(ctx, domain.Notification{
				Level:   domain.LevelInfo,
				Kind:    domain.KindOffline,
				Message: "You are offline. Cart changes will sync when the connection is back",
			})
		case connectivity.EventReconnected:
			notifier.Notify(ctx, domain.Notification{
				Level:   domain.LevelInfo,
				Kind:    domain.KindReconnected,
				Message: "Back online. Syncing your cart",
			})

			if _, err := svc.Sync(ctx); err != nil {
				if errors.Is(err, ErrBusy) || errors.Is(err, ErrNotOpen) {
					logger.InfoContext(ctx, "resync skipped", slog.String("error", err.Error()))
					return
				}
				logger.WarnContext(ctx, "resync after reconnect failed", slog.String("error", err.Error()))
			}
		}
	})
}
