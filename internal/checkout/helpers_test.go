package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCart(t *testing.T, products ...*domain.Product) *cart.Store {
	t.Helper()
	c := cart.Open(context.Background(), storage.NewMemoryStorage(), cart.DefaultKey, zap.NewNop())
	for _, p := range products {
		_, err := c.AddItem(context.Background(), p, 1)
		require.NoError(t, err)
	}
	return c
}

func product(id, price int64, stock int) *domain.Product {
	return &domain.Product{ID: id, Title: "Sword", Price: price, Category: "katana", Stock: stock}
}

func validContact() domain.Contact {
	return domain.Contact{FirstName: "Musashi", LastName: "Miyamoto", Email: "m@example.com", Phone: "+92 300 0000000"}
}

func validAddress() domain.Address {
	return domain.Address{Street: "1 Mall Road", City: "Lahore", State: "Punjab", PostalCode: "54000", Country: domain.DefaultCountry}
}

func validCard() *domain.CardDetails {
	return &domain.CardDetails{Number: "4242 4242 4242 4242", HolderName: "M Miyamoto", Expiry: "12/29", CVV: "123"}
}

func toPayment(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.UpdateShipping(validContact(), validAddress(), domain.ShippingStandard))
	step, err := s.Advance()
	require.NoError(t, err)
	require.Equal(t, StepPayment, step)
}

func toReview(t *testing.T, s *Session, method domain.PaymentMethod) {
	t.Helper()
	toPayment(t, s)
	var card *domain.CardDetails
	if method == domain.PaymentCard {
		card = validCard()
	}
	require.NoError(t, s.UpdatePayment(method, card))
	step, err := s.Advance()
	require.NoError(t, err)
	require.Equal(t, StepReview, step)
}

// recordingListener collects completed orders.
type recordingListener struct {
	mu     sync.Mutex
	orders []domain.CompletedOrder
}

func (l *recordingListener) OnCompleted(_ context.Context, order domain.CompletedOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders = append(l.orders, order)
}

func (l *recordingListener) all() []domain.CompletedOrder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.CompletedOrder(nil), l.orders...)
}
