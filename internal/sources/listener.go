package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	notifyChannel  = "ledger_events"
	reconnectDelay = 3 * time.Second
)

// Listener subscribes to Postgres notifications on the ledger_events
// channel. Each payload is "<feed>:<account_id>"; handle is invoked once
// per notification. A dropped connection reconnects after a short delay.
type Listener struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewListener(pool *pgxpool.Pool, log *logrus.Logger) *Listener {
	return &Listener{pool: pool, log: log}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context, handle func(ctx context.Context, feed, accountID string)) {
	for {
		err := l.listen(ctx, handle)
		if ctx.Err() != nil {
			return
		}
		l.log.WithError(err).Warn("notification stream dropped, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context, handle func(ctx context.Context, feed, accountID string)) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", notifyChannel, err)
	}
	l.log.WithField("channel", notifyChannel).Info("listening for source notifications")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		feed, accountID, ok := strings.Cut(n.Payload, ":")
		if !ok || feed == "" || accountID == "" {
			l.log.WithField("payload", n.Payload).Warn("ignoring malformed notification payload")
			continue
		}
		handle(ctx, feed, accountID)
	}
}
