package checkout

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const orderReferencePrefix = "SWORD-"

// Cart is the part of the cart store a checkout reads and clears.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context) cart.Snapshot
}

// Session walks one checkout from shipping details to a completed order.
type Session struct {
	id        string
	cart      Cart
	processor Processor
	listeners []CompletionListener
	log       *zap.Logger
	now       func() time.Time

	// ctx is cancelled by Close and bounds any in-flight processing.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	step       Step
	draft      domain.Draft
	items      []domain.LineItem
	order      *domain.CompletedOrder
	closed     bool
	lastActive time.Time
}

// View is a read-only copy of a session. Card numbers are masked.
type View struct {
	ID      string                 `json:"id"`
	Step    Step                   `json:"step"`
	Draft   domain.Draft           `json:"draft"`
	Items   []domain.LineItem      `json:"items"`
	Summary domain.OrderSummary    `json:"summary"`
	Order   *domain.CompletedOrder `json:"order,omitempty"`
}

// NewSession starts a checkout over the current cart contents.
func NewSession(c Cart, p Processor, log *zap.Logger, listeners ...CompletionListener) (*Session, error) {
	return newSession(uuid.NewString(), c, p, listeners, log, time.Now)
}

func newSession(id string, c Cart, p Processor, listeners []CompletionListener, log *zap.Logger, now func() time.Time) (*Session, error) {
	snap := c.Snapshot()
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         id,
		cart:       c,
		processor:  p,
		listeners:  listeners,
		log:        log.With(zap.String("checkout_id", id)),
		now:        now,
		ctx:        ctx,
		cancel:     cancel,
		step:       StepShipping,
		draft:      domain.NewDraft(),
		items:      snap.Items,
		lastActive: now(),
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// guardLocked rejects any change once the session is closed, processing or done.
func (s *Session) guardLocked() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.step == StepCompleted:
		return ErrSessionCompleted
	case s.step == StepProcessing:
		return ErrAlreadyProcessing
	}
	s.lastActive = s.now()
	return nil
}

func (s *Session) editLocked(step Step) error {
	if err := s.guardLocked(); err != nil {
		return err
	}
	if s.step != step {
		return fmt.Errorf("%w: %s details are edited in %s, session is in %s", ErrWrongStep, strings.ToLower(string(step)), step, s.step)
	}
	return nil
}

func (s *Session) moveLocked(to Step) error {
	if !CanTransitionTo(s.step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.step, to)
	}
	s.log.Debug("checkout step changed", zap.Stringer("from", s.step), zap.Stringer("to", to))
	s.step = to
	return nil
}

func (s *Session) UpdateShipping(contact domain.Contact, address domain.Address, method domain.ShippingMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editLocked(StepShipping); err != nil {
		return err
	}
	s.draft.Contact = contact
	s.draft.Address = address
	s.draft.ShippingMethod = method
	return nil
}

// UpdatePayment selects the payment method. Card details are kept only for card
// payments.
func (s *Session) UpdatePayment(method domain.PaymentMethod, card *domain.CardDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editLocked(StepPayment); err != nil {
		return err
	}
	s.draft.PaymentMethod = method
	s.draft.Card = nil
	if method == domain.PaymentCard && card != nil {
		c := *card
		s.draft.Card = &c
	}
	return nil
}

func (s *Session) UpdateReview(notes string, consent, saveInfo bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editLocked(StepReview); err != nil {
		return err
	}
	s.draft.Notes = notes
	s.draft.Consent = consent
	s.draft.SaveInfo = saveInfo
	return nil
}

// Advance moves forward one step once the current step validates. On a
// *ValidationError the step is unchanged.
func (s *Session) Advance() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardLocked(); err != nil {
		return s.step, err
	}

	var next Step
	switch s.step {
	case StepShipping:
		if err := validateShipping(s.draft); err != nil {
			return s.step, err
		}
		next = StepPayment
	case StepPayment:
		if err := validatePayment(s.draft); err != nil {
			return s.step, err
		}
		next = StepReview
	default:
		return s.step, fmt.Errorf("%w: %s is left by submitting", ErrIllegalTransition, s.step)
	}
	if err := s.moveLocked(next); err != nil {
		return s.step, err
	}
	return s.step, nil
}

// GoTo returns to an earlier step so its details can be edited.
func (s *Session) GoTo(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardLocked(); err != nil {
		return err
	}
	if step == s.step {
		return nil
	}
	if !step.Before(s.step) || !step.Editable() {
		return fmt.Errorf("%w: cannot go to %s from %s", ErrIllegalTransition, step, s.step)
	}
	return s.moveLocked(step)
}

func (s *Session) Summary() domain.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.ComputeSummary(s.items, s.draft.ShippingMethod, s.draft.PaymentMethod)
}

// Submit places the order from Review. The cart is read again first; an empty
// cart sends the session back to Shipping with ErrEmptyCart. Processing is
// cancelled by ctx or by Close, which puts the session back in Review.
func (s *Session) Submit(ctx context.Context) (*domain.CompletedOrder, error) {
	s.mu.Lock()
	if err := s.guardLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.step != StepReview {
		step := s.step
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: submit from %s", ErrIllegalTransition, step)
	}
	if err := validateReview(s.draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	snap := s.cart.Snapshot()
	if snap.IsEmpty() {
		s.items = nil
		s.step = StepShipping
		s.mu.Unlock()
		s.log.Warn("cart emptied during checkout, submission blocked")
		return nil, ErrEmptyCart
	}

	s.items = snap.Items
	order := &domain.CompletedOrder{
		OrderReference: newOrderReference(),
		Summary:        pricing.ComputeSummary(snap.Items, s.draft.ShippingMethod, s.draft.PaymentMethod),
		PaymentMethod:  s.draft.PaymentMethod,
		ShippingMethod: s.draft.ShippingMethod,
		Items:          slices.Clone(snap.Items),
	}
	if err := s.moveLocked(StepProcessing); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	procCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	s.mu.Unlock()

	err := s.processor.Process(procCtx, order)
	stop()
	cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err != nil {
		s.step = StepReview
		s.lastActive = s.now()
		s.mu.Unlock()
		s.log.Warn("order processing failed", zap.String("order_reference", order.OrderReference), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	order.Timestamp = s.now().UTC()
	s.step = StepCompleted
	s.order = order
	s.draft = domain.Draft{}
	s.lastActive = s.now()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	// Cleanup runs even if the caller has gone away.
	after := context.WithoutCancel(ctx)
	s.cart.Clear(after)
	s.log.Info("checkout completed",
		zap.String("order_reference", order.OrderReference),
		zap.Int64("total", order.Summary.Total),
		zap.String("payment_method", string(order.PaymentMethod)))
	for _, l := range listeners {
		l.OnCompleted(after, copyOrder(order))
	}
	result := copyOrder(order)
	return &result, nil
}

// Close discards the draft and cancels in-flight processing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.draft = domain.Draft{}
	s.items = nil
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.draft
	if draft.Card != nil {
		masked := draft.Card.Masked()
		draft.Card = &masked
	}
	v := View{
		ID:      s.id,
		Step:    s.step,
		Draft:   draft,
		Items:   slices.Clone(s.items),
		Summary: pricing.ComputeSummary(s.items, s.draft.ShippingMethod, s.draft.PaymentMethod),
	}
	if v.Items == nil {
		v.Items = []domain.LineItem{}
	}
	if s.order != nil {
		o := copyOrder(s.order)
		v.Order = &o
		v.Items = o.Items
		v.Summary = o.Summary
	}
	return v
}

// idle reports whether the session can be expired: not processing and
// untouched for longer than ttl.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step != StepProcessing && now.Sub(s.lastActive) > ttl
}

func copyOrder(o *domain.CompletedOrder) domain.CompletedOrder {
	c := *o
	c.Items = slices.Clone(o.Items)
	return c
}

func newOrderReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return orderReferencePrefix + strings.ToUpper(id[:12])
}
