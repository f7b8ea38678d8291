package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/pricing"
	"github.com/fjod/swordshop/internal/storage"
	"go.uber.org/zap"
)

const DefaultKey = "swordshop_cart"

// Snapshot is a copy of the cart; changing it does not affect the store.
type Snapshot struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Store owns the cart line items and writes the full list to storage after
// every change.
type Store struct {
	mu          sync.Mutex
	items       []domain.LineItem
	storage     storage.Storage
	key         string
	log         *zap.Logger
	degraded    bool
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Open rehydrates the cart stored under key. Missing or unreadable data gives an
// empty cart.
func Open(ctx context.Context, st storage.Storage, key string, log *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		items:       []domain.LineItem{},
		storage:     st,
		key:         key,
		log:         log.With(zap.String("cart_key", key)),
		subscribers: make(map[int]func(Snapshot)),
	}

	data, err := st.Load(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s
	case err != nil:
		s.log.Warn("cart storage unavailable, keeping cart in memory only", zap.Error(err))
		s.degraded = true
		return s
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("stored cart is corrupt, starting with an empty cart", zap.Error(err))
		return s
	}
	s.items = sanitize(items)
	s.log.Info("cart restored", zap.Int("lines", len(s.items)))
	return s
}

// sanitize drops invalid lines and merges duplicates so restored data obeys the
// one-line-per-product rule.
func sanitize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity < 1 || item.Price < 0 {
			continue
		}
		if i := indexOf(out, item.ProductID); i >= 0 {
			out[i].Quantity += item.Quantity
			out[i].Quantity = clamp(out[i].Quantity, out[i].StockCeiling)
			continue
		}
		item.Quantity = clamp(item.Quantity, item.StockCeiling)
		out = append(out, item)
	}
	return out
}

// clamp limits q to [1, ceiling]. A ceiling of zero or less means unknown stock.
func clamp(q, ceiling int) int {
	if ceiling > 0 && q > ceiling {
		q = ceiling
	}
	if q < 1 {
		q = 1
	}
	return q
}

func indexOf(items []domain.LineItem, productID int64) int {
	return slices.IndexFunc(items, func(i domain.LineItem) bool { return i.ProductID == productID })
}

// AddItem merges quantity of product into the cart. A product without stock is
// rejected with ErrOutOfStock and the cart is left as is.
func (s *Store) AddItem(ctx context.Context, product *domain.Product, quantity int) (Snapshot, error) {
	if product == nil {
		return s.Snapshot(), ErrInvalidProduct
	}
	if err := product.Validate(); err != nil {
		return s.Snapshot(), fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if product.Stock <= 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Warn("ignoring add of out-of-stock product", zap.Int64("product_id", product.ID))
		return snap, ErrOutOfStock
	}

	if i := indexOf(s.items, product.ID); i >= 0 {
		s.items[i].StockCeiling = product.Stock
		s.items[i].Quantity = clamp(s.items[i].Quantity+quantity, product.Stock)
	} else {
		s.items = append(s.items, domain.NewLineItem(product, clamp(quantity, product.Stock)))
	}
	return s.commitLocked(ctx), nil
}

// RemoveItem drops the line for productID. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID int64) Snapshot {
	s.mu.Lock()
	i := indexOf(s.items, productID)
	if i < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.items = slices.Delete(s.items, i, i+1)
	return s.commitLocked(ctx)
}

// SetQuantity sets the quantity of a line. Values below one remove the line and
// values above the stock ceiling are clamped to it.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) Snapshot {
	if quantity < 1 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	i := indexOf(s.items, productID)
	if i < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	q := clamp(quantity, s.items[i].StockCeiling)
	if q == s.items[i].Quantity {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.items[i].Quantity = q
	return s.commitLocked(ctx)
}

func (s *Store) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.items = []domain.LineItem{}
	return s.commitLocked(ctx)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Degraded reports whether the last storage access failed and the cart currently
// lives in memory only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Subscribe registers fn to receive a snapshot after every change. The returned
// func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := slices.Clone(s.items)
	if items == nil {
		items = []domain.LineItem{}
	}
	return Snapshot{
		Items:     items,
		ItemCount: pricing.ItemCount(items),
		Subtotal:  pricing.Subtotal(items),
	}
}

// commitLocked persists the cart, releases the lock and notifies subscribers.
func (s *Store) commitLocked(ctx context.Context) Snapshot {
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// persistLocked writes the cart on every change, degraded or not. Remote backends
// sit behind a breaker, so while it is open these writes fail fast; the first
// write that succeeds again clears the degraded flag.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.log.Warn("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		if !s.degraded {
			s.log.Warn("cart storage write failed, keeping cart in memory only", zap.Error(err))
			s.degraded = true
			return
		}
		s.log.Debug("cart storage still unavailable", zap.Error(err))
		return
	}
	if s.degraded {
		s.degraded = false
		s.log.Info("cart storage recovered, cart persisted again")
	}
}
