package checkout

import (
	"context"

	"github.com/fjod/swordshop/internal/domain"
)

// CompletionListener is told about every completed order exactly once.
type CompletionListener interface {
	OnCompleted(ctx context.Context, order domain.CompletedOrder)
}

type ListenerFunc func(ctx context.Context, order domain.CompletedOrder)

func (f ListenerFunc) OnCompleted(ctx context.Context, order domain.CompletedOrder) {
	f(ctx, order)
}
