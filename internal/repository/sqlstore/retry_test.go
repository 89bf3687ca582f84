// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sqlstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

// flakyDB fails the first `failures` pings.
type flakyDB struct {
	calls    int32
	failures int32
}

var errDown = errors.New("connection refused")

func (f *flakyDB) PingContext(context.Context) error {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return errDown
	}
	return nil
}

func TestPingWithRetry_ImmediateSuccess(t *testing.T) {
	db := &flakyDB{}
	err := PingWithRetry(context.Background(), db, 5, nil)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&db.calls))
}

func TestPingWithRetry_RetriesThenSucceeds(t *testing.T) {
	db := &flakyDB{failures: 2}
	err := PingWithRetry(context.Background(), db, 5, nil)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&db.calls))
}

func TestPingWithRetry_ExhaustsRetries(t *testing.T) {
	db := &flakyDB{failures: 100}
	err := PingWithRetry(context.Background(), db, 3, nil)
	assert.ErrorIs(t, err, errDown)
	// 1 initial + 3 retries = 4 total calls.
	assert.Equal(t, int32(4), atomic.LoadInt32(&db.calls))
}

func TestPingWithRetry_DefaultMaxRetries(t *testing.T) {
	db := &flakyDB{failures: 100}
	err := PingWithRetry(context.Background(), db, 0, nil)
	assert.ErrorIs(t, err, errDown)
	// 1 initial + 5 default retries = 6 total calls.
	assert.Equal(t, int32(6), atomic.LoadInt32(&db.calls))
}

func TestPingWithRetry_NegativeDisablesRetries(t *testing.T) {
	db := &flakyDB{failures: 100}
	err := PingWithRetry(context.Background(), db, -1, nil)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, int32(1), atomic.LoadInt32(&db.calls))
}

func TestPingWithRetry_ContextCancelled(t *testing.T) {
	// Use a longer base delay so the context cancels during the wait.
	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := PingWithRetry(ctx, &flakyDB{failures: 100}, 5, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
