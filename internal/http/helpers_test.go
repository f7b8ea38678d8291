package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/checkout"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler  http.Handler
	cart     *cart.Store
	catalog  *catalog.Repository
	sessions *checkout.Manager
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()

	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { repo.Close() })

	c := cart.Open(context.Background(), storage.NewMemoryStorage(), cart.DefaultKey, zap.NewNop())
	instant := checkout.ProcessorFunc(func(ctx context.Context, _ *domain.CompletedOrder) error {
		return ctx.Err()
	})
	m := checkout.NewManager(c, instant, zap.NewNop())
	t.Cleanup(func() { m.Close() })

	h := NewRouter(RouterConfig{RequestTimeout: 5 * time.Second, RateLimiter: limiter}, repo, c, m, zap.NewNop())
	return &testServer{handler: h, cart: c, catalog: repo, sessions: m}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// providerMock is a catalog that returns a fixed product set or error.
type providerMock struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	err      error
	filters  []catalog.Filter
}

func (p *providerMock) ListProducts(_ context.Context, filter catalog.Filter) ([]*domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = append(p.filters, filter)
	if p.err != nil {
		return nil, p.err
	}
	out := make([]*domain.Product, 0, len(p.products))
	for _, prod := range p.products {
		out = append(out, prod)
	}
	return out, nil
}

func (p *providerMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	prod, ok := p.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return prod, nil
}

func (p *providerMock) lastFilter() catalog.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters[len(p.filters)-1]
}
