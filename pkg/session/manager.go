package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/agrimind/internal/logging"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access so that turns of one
// conversation never interleave. Local locks are reference counted and
// dropped when unused; an optional DistributedLocker extends the guarantee
// across replicas.
type Manager struct {
	store ports.ConversationStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given store.
func NewManager(store ports.ConversationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves an existing conversation.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, id)
		return err
	})
	return conv, err
}

// LoadOrCreate loads a conversation, creating and persisting an empty one
// when it does not exist yet.
func (m *Manager) LoadOrCreate(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.loadOrNew(ctx, id)
		if err != nil || len(conv.Messages) > 0 {
			return err
		}
		if err := m.store.Save(ctx, conv); err != nil {
			return fmt.Errorf("failed to initialize conversation: %w", err)
		}
		return nil
	})
	return conv, err
}

// Update loads (or starts) a conversation, applies fn and saves the result,
// all under the conversation's lock. Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(context.Context, *domain.Conversation) error) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.loadOrNew(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, conv); err != nil {
			return err
		}
		return m.store.Save(ctx, conv)
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *Manager) loadOrNew(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := m.store.Load(ctx, id)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	return domain.NewConversation(id), nil
}

// Save persists the conversation.
func (m *Manager) Save(ctx context.Context, conv *domain.Conversation) error {
	return m.WithLock(ctx, conv.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, conv)
	})
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock executes fn while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The request context may already be done; release regardless.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
