package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/logger"
	"github.com/google/uuid"
)

// backend namespace holding one record per live session
const RecordsNamespace = "_sessions"

// manages to-do sessions. Records are mirrored to a kv store when one is configured.
type Manager struct {
	sessions map[string]*entry
	mu       sync.RWMutex
	ttl      time.Duration
	onExpire ExpireFunc
	records  kv.Store
	now      func() time.Time
}

type Option func(*Manager)

// keeps session records in store so a restarted manager can Load them
func WithRecords(store kv.Store) Option {
	return func(m *Manager) {
		m.records = store
	}
}

// returns a new session manager. onExpire may be nil.
func NewManager(ttl time.Duration, onExpire ExpireFunc, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		onExpire: onExpire,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// restores the sessions recorded by an earlier manager and returns how many were added.
// Expired records are restored too so the next Sweep drops their state.
func (m *Manager) Load(ctx context.Context) (int, error) {
	if m.records == nil {
		return 0, nil
	}

	var saved map[string]Session
	if err := kv.Decode(ctx, m.records, &saved); err != nil {
		return 0, fmt.Errorf("failed to load session records: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for id, s := range saved {
		if _, exists := m.sessions[id]; exists || s.ID != id {
			continue
		}
		m.sessions[id] = &entry{Session: s}
		added++
	}

	return added, nil
}

// creates a new session owned by ownerID (empty for anonymous sessions)
func (m *Manager) Create(ctx context.Context, ownerID string) (Session, error) {
	now := m.now()
	e := &entry{Session: Session{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
	}}

	if err := m.save(ctx, e.Session); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	m.sessions[e.ID] = e
	m.mu.Unlock()

	return e.Session, nil
}

// retrieves a session visible to ownerID. Sessions owned by someone else are reported as not found.
func (m *Manager) Get(sessionID, ownerID string) (Session, error) {
	e, err := m.lookup(sessionID, ownerID)
	if err != nil {
		return Session{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return e.Session, nil
}

// extends the session's expiry and records activity
func (m *Manager) Touch(ctx context.Context, sessionID, ownerID string) error {
	e, err := m.lookup(sessionID, ownerID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	now := m.now()
	e.LastActivity = now
	e.ExpiresAt = now.Add(m.ttl)
	s := e.Session
	m.mu.Unlock()

	return m.save(ctx, s)
}

// runs fn while holding the session's run lock and touches the session afterwards
func (m *Manager) WithSession(ctx context.Context, sessionID, ownerID string, fn func() error) error {
	e, err := m.lookup(sessionID, ownerID)
	if err != nil {
		return err
	}

	e.run.Lock()
	defer e.run.Unlock()

	if err := fn(); err != nil {
		return err
	}

	return m.Touch(ctx, sessionID, ownerID)
}

// removes a session once any run on it has finished, then drops its state and record
func (m *Manager) Delete(ctx context.Context, sessionID, ownerID string) error {
	e, err := m.lookup(sessionID, ownerID)
	if err != nil {
		return err
	}

	e.run.Lock()
	defer e.run.Unlock()

	m.mu.Lock()
	delete(m.sessions, sessionID)
	s := e.Session
	m.mu.Unlock()

	return m.remove(ctx, s)
}

// removes expired sessions and returns how many were removed
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()

	m.mu.Lock()
	expired := make([]Session, 0)
	for id, e := range m.sessions {
		if now.After(e.ExpiresAt) {
			expired = append(expired, e.Session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if err := m.remove(ctx, s); err != nil {
			logger.Warn("failed to clean up expired session",
				"session_id", s.ID,
				"error", err,
			)
		}
	}

	if len(expired) > 0 {
		logger.Info("expired sessions removed", "count", len(expired))
	}

	return len(expired)
}

// returns the number of tracked sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(sessionID, ownerID string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.sessions[sessionID]
	if !exists || e.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}

	if m.now().After(e.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return e, nil
}

// runs the expiry hook and forgets the record. When the hook fails the record is
// kept as expired so a later Load and Sweep retry the cleanup.
func (m *Manager) remove(ctx context.Context, s Session) error {
	if err := m.expire(ctx, s.ID); err != nil {
		s.ExpiresAt = m.now()
		if serr := m.save(ctx, s); serr != nil {
			logger.Warn("failed to mark session record expired", "session_id", s.ID, "error", serr)
		}
		return err
	}

	if m.records == nil {
		return nil
	}

	if err := m.records.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}

	return nil
}

func (m *Manager) save(ctx context.Context, s Session) error {
	if m.records == nil {
		return nil
	}

	if err := m.records.Write(ctx, s.ID, s); err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}

	return nil
}

func (m *Manager) expire(ctx context.Context, sessionID string) error {
	if m.onExpire == nil {
		return nil
	}

	return m.onExpire(ctx, sessionID)
}
