package checkout

import (
	"context"
	"time"

	"github.com/fjod/swordshop/internal/domain"
)

const DefaultProcessingDelay = 2 * time.Second

// Processor carries out the order once it is submitted. An error leaves the
// session in Review so the customer can submit again.
type Processor interface {
	Process(ctx context.Context, order *domain.CompletedOrder) error
}

// DelayProcessor stands in for a payment backend by waiting a fixed delay.
type DelayProcessor struct {
	Delay time.Duration
}

func NewDelayProcessor(delay time.Duration) *DelayProcessor {
	return &DelayProcessor{Delay: delay}
}

func (p *DelayProcessor) Process(ctx context.Context, _ *domain.CompletedOrder) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, order *domain.CompletedOrder) error

func (f ProcessorFunc) Process(ctx context.Context, order *domain.CompletedOrder) error {
	return f(ctx, order)
}
