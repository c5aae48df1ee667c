// Package memory holds in-process repositories for local development and tests.
// State is lost on restart and is not shared between replicas.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/repository"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// NewRepositories returns a complete in-memory repository set
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		PendingOrder:   NewPendingOrderRepository(),
		IdempotencyKey: NewIdempotencyKeyRepository(),
		CheckoutEvent:  NewCheckoutEventRepository(),
		Session:        NewSessionStore(),
		Sequencer:      NewSequencer(),
		PlacingLock:    NewPlacingLock(),
	}
}

type PendingOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.PendingOrder
}

func NewPendingOrderRepository() *PendingOrderRepository {
	return &PendingOrderRepository{orders: make(map[uuid.UUID]domain.PendingOrder)}
}

func (r *PendingOrderRepository) Create(_ context.Context, order *domain.PendingOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *PendingOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.PendingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "pending_order", ID: id.String()}
	}
	return &order, nil
}

func (r *PendingOrderRepository) Take(_ context.Context, id uuid.UUID) (*domain.PendingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "pending_order", ID: id.String()}
	}
	delete(r.orders, id)
	return &order, nil
}

func (r *PendingOrderRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, order := range r.orders {
		if order.IsExpired(now) {
			delete(r.orders, id)
			n++
		}
	}
	return n, nil
}

type IdempotencyKeyRepository struct {
	mu   sync.Mutex
	keys map[string]domain.IdempotencyKey
}

func NewIdempotencyKeyRepository() *IdempotencyKeyRepository {
	return &IdempotencyKeyRepository{keys: make(map[string]domain.IdempotencyKey)}
}

func (r *IdempotencyKeyRepository) GetByKey(_ context.Context, key string) (*domain.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *IdempotencyKeyRepository) Create(_ context.Context, key *domain.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key.Key]; ok {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	r.keys[key.Key] = *key
	return nil
}

type CheckoutEventRepository struct {
	mu     sync.Mutex
	events []domain.CheckoutEvent
}

func NewCheckoutEventRepository() *CheckoutEventRepository {
	return &CheckoutEventRepository{}
}

func (r *CheckoutEventRepository) Create(_ context.Context, event *domain.CheckoutEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *CheckoutEventRepository) GetBySessionID(_ context.Context, sessionID uuid.UUID) ([]*domain.CheckoutEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CheckoutEvent
	for i := range r.events {
		if r.events[i].SessionID == sessionID {
			e := r.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

type sessionEntry struct {
	raw       []byte
	expiresAt time.Time
}

// SessionStore keeps sessions JSON-encoded so callers never share mutable state
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]sessionEntry
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]sessionEntry), now: time.Now}
}

func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*checkout.Session, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok && !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "checkout_session", ID: id.String()}
	}

	var session checkout.Session
	if err := json.Unmarshal(entry.raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Save(_ context.Context, session *checkout.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	entry := sessionEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.sessions[session.ID] = entry
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

type Sequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequencer() *Sequencer {
	return &Sequencer{counters: make(map[string]int64)}
}

func (s *Sequencer) Next(_ context.Context, scope string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scope]++
	return s.counters[scope], nil
}

func (s *Sequencer) Latest(_ context.Context, scope string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[scope], nil
}

type PlacingLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]time.Time
	now  func() time.Time
}

func NewPlacingLock() *PlacingLock {
	return &PlacingLock{held: make(map[uuid.UUID]time.Time), now: time.Now}
}

func (l *PlacingLock) Acquire(_ context.Context, sessionID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.held[sessionID]; ok && l.now().Before(until) {
		return false, nil
	}
	l.held[sessionID] = l.now().Add(ttl)
	return true, nil
}

func (l *PlacingLock) Release(_ context.Context, sessionID uuid.UUID) error {
	l.mu.Lock()
	delete(l.held, sessionID)
	l.mu.Unlock()
	return nil
}

func (l *PlacingLock) Held(_ context.Context, sessionID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.held[sessionID]
	return ok && l.now().Before(until), nil
}
