// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sqlstore

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff between
// connection attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultPingRetries = 5

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingWithRetry pings the database and retries failed attempts with
// exponential backoff. The delay starts at RetryBaseDelay and doubles each
// attempt: 0.5 s, 1 s, 2 s, 4 s, 8 s.
//
// When maxRetries is 0 the default (5) is used; a negative value disables
// retries. If the context is cancelled during a backoff wait the function
// returns ctx.Err(). After exhausting retries the last ping error is
// returned.
func PingWithRetry(ctx context.Context, db Pinger, maxRetries int, logger *slog.Logger) error {
	if maxRetries == 0 {
		maxRetries = defaultPingRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if logger != nil {
			logger.Warn("database not reachable, retrying",
				"error", err, "backoff", backoff, "attempt", attempt+1, "max", maxRetries)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
