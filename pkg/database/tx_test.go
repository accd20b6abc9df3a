package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate key", fmt.Errorf("insert play: %w", gorm.ErrDuplicatedKey), true},
		{"deadline", context.DeadlineExceeded, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestWithRetrySucceedsAfterConflict(t *testing.T) {
	var calls, retries int
	err := WithRetry(context.Background(), RetryPolicy{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		OnRetry:     func(int, error) { retries++ },
	}, func(context.Context) error {
		calls++
		if calls < 2 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, retries)
}

func TestWithRetryExhausted(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 3}, func(context.Context) error {
		calls++
		return gorm.ErrDuplicatedKey
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 3}, func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, calls)
}

func TestWithRetryAttemptTimeout(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 2, Timeout: 5 * time.Millisecond}, func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 2, calls)
}

func TestDialectHelpers(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	assert.False(t, IsPostgres(db))
	assert.Nil(t, SerializableTx(db))
}
