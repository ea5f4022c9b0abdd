package connectivity

import (
	"context"
	"log/slog"
	"time"
)

// HealthChecker is satisfied by remote.Client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober turns periodic health checks into connectivity reports for processes
// that have no platform online/offline signal.
type Prober struct {
	checker  HealthChecker
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewProber(checker HealthChecker, interval time.Duration, logger *slog.Logger) *Prober {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Prober{checker: checker, interval: interval, timeout: timeout, logger: logger}
}

// Check runs one health check.
func (p *Prober) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.checker.Health(ctx); err != nil {
		p.logger.Debug("health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Watch checks immediately and then every interval, sending a report only when
// the result differs from the previous one. The channel closes when ctx is done.
func (p *Prober) Watch(ctx context.Context) <-chan bool {
	out := make(chan bool)
	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		first := true
		var last bool
		for {
			online := p.Check(ctx)
			if first || online != last {
				select {
				case out <- online:
				case <-ctx.Done():
					return
				}
				first, last = false, online
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
