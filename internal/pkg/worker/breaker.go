package worker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen 推送连续失败，暂停投递
var ErrCircuitOpen = errors.New("notification circuit breaker is open")

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// BreakerSender 熔断包装：连续失败 maxFailures 次后打开，resetTimeout 后放行一次探测
type BreakerSender struct {
	next         Sender
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	state    CircuitState
	probing  bool
}

func NewBreakerSender(next Sender, maxFailures int, resetTimeout time.Duration) *BreakerSender {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &BreakerSender{
		next:         next,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        StateClosed,
	}
}

func (b *BreakerSender) Send(ctx context.Context, task NotificationTask) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	// 不持锁调用下游
	err := b.next.Send(ctx, task)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.maxFailures {
			b.state = StateOpen
			b.openedAt = b.now()
		}
		return err
	}

	b.failures = 0
	b.state = StateClosed
	return nil
}

func (b *BreakerSender) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return false
		}
		b.state = StateHalfOpen
		b.probing = true
		return true
	case StateHalfOpen:
		// 半开时只放行一个探测
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// State 当前状态
func (b *BreakerSender) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
