package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/swordshop/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultSessionTTL is how long an untouched checkout is kept.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often idle sessions are looked for.
	DefaultCleanupInterval = time.Minute
)

// Manager owns the open checkout sessions. Sessions left idle longer than the
// TTL are discarded, the same as navigating away from checkout.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cart            Cart
	processor       Processor
	listeners       []CompletionListener
	log             *zap.Logger
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

type ManagerOption func(*Manager)

func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

func WithCleanupInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.cleanupInterval = d }
}

func WithListeners(listeners ...CompletionListener) ManagerOption {
	return func(m *Manager) { m.listeners = append(m.listeners, listeners...) }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager starts the background cleanup; call Close to stop it.
func NewManager(c Cart, p Processor, log *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:        make(map[string]*Session),
		cart:            c,
		processor:       p,
		log:             log,
		ttl:             DefaultSessionTTL,
		cleanupInterval: DefaultCleanupInterval,
		now:             time.Now,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireSessions()
		case <-m.stopCleanup:
			return
		}
	}
}

// expireSessions closes and forgets sessions idle past the TTL.
func (m *Manager) expireSessions() int {
	now := m.now()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idle(now, m.ttl) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.log.Info("checkout session expired", zap.String("checkout_id", s.ID()))
	}
	return len(expired)
}

// Begin opens a checkout over the current cart. An empty cart gives ErrEmptyCart.
func (m *Manager) Begin(ctx context.Context) (*Session, error) {
	s, err := newSession(uuid.NewString(), m.cart, m.processor, m.listeners, m.log, m.now)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	logger.FromCtx(ctx, m.log).Info("checkout session started", zap.String("checkout_id", s.id))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Discard closes the session and forgets it.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup loop and closes every open session.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCleanup)
		m.wg.Wait()

		m.mu.Lock()
		sessions := m.sessions
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()

		for _, s := range sessions {
			s.Close()
		}
	})
	return nil
}
