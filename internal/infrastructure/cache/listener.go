// Package cache keeps the filter schema (attributes and relation names) in
// memory and invalidates it on PostgreSQL LISTEN/NOTIFY events.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard/pkg/logger"
)

// Notification channels raised by the database triggers.
const (
	AttributesChannel = "attributes_changed"
	RelationsChannel  = "relations_changed"
)

// Handler reacts to a notification payload.
type Handler func(ctx context.Context, payload string)

// Listener holds a dedicated connection that LISTENs to channels and
// dispatches notifications to registered handlers.
type Listener struct {
	pool *pgxpool.Pool

	handlersMu sync.RWMutex
	handlers   map[string][]Handler

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewListener creates a listener. Handlers must be registered before Start.
func NewListener(pool *pgxpool.Pool) *Listener {
	return &Listener{pool: pool, handlers: make(map[string][]Handler)}
}

// On registers h for channel.
func (l *Listener) On(channel string, h Handler) {
	l.handlersMu.Lock()
	l.handlers[channel] = append(l.handlers[channel], h)
	l.handlersMu.Unlock()
}

func (l *Listener) channels() []string {
	l.handlersMu.RLock()
	defer l.handlersMu.RUnlock()
	out := make([]string, 0, len(l.handlers))
	for ch := range l.handlers {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// Start begins listening in the background.
func (l *Listener) Start(ctx context.Context) {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()
	if l.started {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.started = true

	l.wg.Add(1)
	go l.loop(ctx)
}

// Stop cancels the listener and waits for it to exit.
func (l *Listener) Stop() {
	l.lifecycleMu.Lock()
	if !l.started {
		l.lifecycleMu.Unlock()
		return
	}
	cancel := l.cancel
	l.started = false
	l.cancel = nil
	l.lifecycleMu.Unlock()

	cancel()
	l.wg.Wait()
}

func (l *Listener) loop(ctx context.Context) {
	defer l.wg.Done()

	for ctx.Err() == nil {
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "notification listener failed, retrying", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// listen holds one connection until it fails or ctx is cancelled.
func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	channels := l.channels()
	stmts := make([]string, len(channels))
	for i, ch := range channels {
		stmts[i] = "LISTEN " + pgx.Identifier{ch}.Sanitize()
	}
	if _, err := conn.Exec(ctx, strings.Join(stmts, "; ")); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info(ctx, "listening for notifications", "channels", channels)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		logger.Debug(ctx, "received notification", "channel", n.Channel, "payload", n.Payload)
		l.dispatch(ctx, n.Channel, n.Payload)
	}
}

// dispatch calls the handlers of channel in order. A panicking handler does
// not stop the others.
func (l *Listener) dispatch(ctx context.Context, channel, payload string) {
	l.handlersMu.RLock()
	handlers := l.handlers[channel]
	l.handlersMu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "notification handler panic recovered", "channel", channel, "panic", r)
				}
			}()
			h(ctx, payload)
		}()
	}
}
