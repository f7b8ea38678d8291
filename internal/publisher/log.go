package publisher

import (
	"context"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/logger"
	"github.com/fjod/swordshop/internal/pricing"
	"go.uber.org/zap"
)

// LogListener writes a receipt line for every completed order.
type LogListener struct {
	log *zap.Logger
}

func NewLogListener(log *zap.Logger) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) OnCompleted(ctx context.Context, order domain.CompletedOrder) {
	logger.FromCtx(ctx, l.log).Info("order receipt",
		zap.String("order_reference", order.OrderReference),
		zap.Int("items", pricing.ItemCount(order.Items)),
		zap.String("subtotal", pricing.FormatPKR(order.Summary.Subtotal)),
		zap.String("shipping", pricing.FormatPKR(order.Summary.Shipping)),
		zap.String("tax", pricing.FormatPKR(order.Summary.Tax)),
		zap.String("surcharge", pricing.FormatPKR(order.Summary.Surcharge)),
		zap.String("total", pricing.FormatPKR(order.Summary.Total)),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("shipping_method", string(order.ShippingMethod)),
		zap.Time("completed_at", order.Timestamp))
}
