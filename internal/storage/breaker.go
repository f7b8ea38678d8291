package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures when a remote backend is considered down.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

var DefaultBreakerSettings = BreakerSettings{MaxFailures: 3, OpenTimeout: 30 * time.Second}

// BreakerStorage fails fast while the wrapped backend keeps erroring.
type BreakerStorage struct {
	next Storage
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerStorage(name string, next Storage, settings BreakerSettings, log *zap.Logger) *BreakerStorage {
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("storage breaker state changed",
				zap.String("storage", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerStorage{next: next, cb: cb}
}

func (b *BreakerStorage) Load(ctx context.Context, key string) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.next.Load(ctx, key)
	})
}

func (b *BreakerStorage) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Save(ctx, key, value)
	})
	return err
}

func (b *BreakerStorage) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

func (b *BreakerStorage) State() gobreaker.State {
	return b.cb.State()
}
