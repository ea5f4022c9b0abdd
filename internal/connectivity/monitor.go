// Package connectivity tracks whether the order-service is reachable.
//
// The Monitor is a two-state machine (online/offline) driven by pushed events.
// It notifies listeners once per transition: going offline always fires
// EventOffline, coming back online fires EventReconnected only when the monitor
// has been offline before. Starting online and staying online fires nothing.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
)

type Event string

const (
	EventOffline     Event = "offline"
	EventReconnected Event = "reconnected"
)

type Listener func(Event)

type Monitor struct {
	mu             sync.Mutex
	online         bool
	hasBeenOffline bool
	listeners      map[int]Listener
	nextID         int
	logger         *slog.Logger
}

type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor starts in the state the platform currently reports.
// Starting offline counts as having been offline.
func NewMonitor(initialOnline bool, opts ...Option) *Monitor {
	m := &Monitor{
		online:         initialOnline,
		hasBeenOffline: !initialOnline,
		listeners:      map[int]Listener{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn and returns a function that removes it.
func (m *Monitor) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// SetOnline applies a pushed connectivity report. Repeated reports of the
// current state are ignored.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	var event Event
	if !online {
		m.hasBeenOffline = true
		event = EventOffline
	} else if m.hasBeenOffline {
		event = EventReconnected
	}

	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	m.logger.Info("connectivity changed", slog.Bool("online", online))
	if event == "" {
		return
	}
	for _, l := range listeners {
		l(event)
	}
}

// Run applies reports from events until ctx is done or events is closed.
func (m *Monitor) Run(ctx context.Context, events <-chan bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case online, ok := <-events:
			if !ok {
				return nil
			}
			m.SetOnline(online)
		}
	}
}
