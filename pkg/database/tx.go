package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRetriesExhausted 冲突重试次数用尽
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// IsPostgres 判断当前连接是否为 Postgres
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// SerializableTx Postgres 下使用 SERIALIZABLE，其他方言使用默认隔离级别
func SerializableTx(db *gorm.DB) *sql.TxOptions {
	if IsPostgres(db) {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

// ForUpdateSkipLocked 行锁子句，仅 Postgres 生效
func ForUpdateSkipLocked(db *gorm.DB) *gorm.DB {
	if IsPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	return db
}

// Postgres SQLSTATE
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// IsRetryable 判断错误是否为并发冲突，可整体重试事务
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgUniqueViolation:
			return true
		}
		return false
	}

	// SQLite 驱动只暴露错误文本
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// RetryPolicy 事务重试策略
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration // 单次尝试超时
	OnRetry     func(attempt int, err error)
}

// WithRetry 执行 fn，冲突时指数退避重试。
// 单次尝试的超时不影响外层 ctx；外层 ctx 结束时立即返回其错误。
func WithRetry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = runAttempt(ctx, p.Timeout, fn)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}

	return errors.Join(ErrRetriesExhausted, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
