package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/todoai/server/internal/kv"
)

// a manager whose clock the test controls
func newTestManager(ttl time.Duration, onExpire ExpireFunc) (*Manager, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(ttl, onExpire)
	m.now = func() time.Time { return now }
	return m, &now
}

func create(t *testing.T, m *Manager, ownerID string) Session {
	t.Helper()

	s, err := m.Create(context.Background(), ownerID)
	require.NoError(t, err)
	return s
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(time.Hour, nil)

	s := create(t, m, "")
	assert.Len(t, s.ID, 36)
	assert.Equal(t, s.CreatedAt.Add(time.Hour), s.ExpiresAt)

	got, err := m.Get(s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = m.Get("missing", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, m.Count())
}

func TestOwnership(t *testing.T) {
	m, _ := newTestManager(time.Hour, nil)

	owned := create(t, m, "user-1")

	_, err := m.Get(owned.ID, "user-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Get(owned.ID, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.Delete(context.Background(), owned.ID, "user-2"), ErrSessionNotFound)

	_, err = m.Get(owned.ID, "user-1")
	assert.NoError(t, err)
}

func TestTouchExtendsExpiry(t *testing.T) {
	m, now := newTestManager(time.Hour, nil)
	s := create(t, m, "")

	*now = now.Add(45 * time.Minute)
	require.NoError(t, m.Touch(context.Background(), s.ID, ""))

	*now = now.Add(45 * time.Minute)
	got, err := m.Get(s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, *now, got.LastActivity.Add(45*time.Minute))

	*now = now.Add(2 * time.Hour)
	_, err = m.Get(s.ID, "")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSweep(t *testing.T) {
	var dropped []string
	hook := func(_ context.Context, id string) error {
		dropped = append(dropped, id)
		return nil
	}

	m, now := newTestManager(time.Hour, hook)
	old := create(t, m, "")

	*now = now.Add(50 * time.Minute)
	fresh := create(t, m, "")

	*now = now.Add(20 * time.Minute)
	removed := m.Sweep(context.Background())

	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{old.ID}, dropped)
	assert.Equal(t, 1, m.Count())

	_, err := m.Get(fresh.ID, "")
	assert.NoError(t, err)
}

func TestSweep_HookErrorDoesNotStop(t *testing.T) {
	calls := 0
	m, now := newTestManager(time.Minute, func(context.Context, string) error {
		calls++
		return errors.New("backend down")
	})

	create(t, m, "")
	create(t, m, "")
	*now = now.Add(time.Hour)

	assert.Equal(t, 2, m.Sweep(context.Background()))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, m.Count())
}

func TestDeleteRunsHook(t *testing.T) {
	var dropped string
	m, _ := newTestManager(time.Hour, func(_ context.Context, id string) error {
		dropped = id
		return nil
	})

	s := create(t, m, "user-1")
	require.NoError(t, m.Delete(context.Background(), s.ID, "user-1"))
	assert.Equal(t, s.ID, dropped)
	assert.Equal(t, 0, m.Count())
}

func TestWithSession_Serializes(t *testing.T) {
	m, _ := newTestManager(time.Hour, nil)
	s := create(t, m, "")

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := m.WithSession(context.Background(), s.ID, "", func() error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.WithSession(context.Background(), s.ID, "", func() error { return boom }), boom)
	assert.ErrorIs(t, m.WithSession(context.Background(), "missing", "", func() error { return nil }), ErrSessionNotFound)
}

// managers over one backend, as across a server restart
func newRecordedManager(t *testing.T, backend kv.Backend, now time.Time) *Manager {
	t.Helper()

	records, err := backend.Open(context.Background(), RecordsNamespace)
	require.NoError(t, err)

	m := NewManager(time.Hour, backend.Drop, WithRecords(records))
	m.now = func() time.Time { return now }
	return m
}

func newSQLiteBackend(t *testing.T) *kv.SQLiteBackend {
	t.Helper()

	backend, err := kv.NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestLoad_RestoresSessionsAfterRestart(t *testing.T) {
	ctx := context.Background()
	backend := newSQLiteBackend(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	first := newRecordedManager(t, backend, start)
	kept := create(t, first, "user-1")
	gone := create(t, first, "")
	require.NoError(t, first.Delete(ctx, gone.ID, ""))

	second := newRecordedManager(t, backend, start.Add(30*time.Minute))
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	got, err := second.Get(kept.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, kept.ExpiresAt.Equal(got.ExpiresAt))

	_, err = second.Get(kept.ID, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = second.Get(gone.ID, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// activity on the new manager is recorded for the next one
	require.NoError(t, second.Touch(ctx, kept.ID, "user-1"))

	third := newRecordedManager(t, backend, start.Add(75*time.Minute))
	_, err = third.Load(ctx)
	require.NoError(t, err)

	_, err = third.Get(kept.ID, "user-1")
	assert.NoError(t, err)
}

func TestLoad_ExpiredSessionsAreDroppedBySweep(t *testing.T) {
	ctx := context.Background()
	backend := newSQLiteBackend(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	first := newRecordedManager(t, backend, start)
	s := create(t, first, "")

	state, err := backend.Open(ctx, s.ID)
	require.NoError(t, err)
	require.NoError(t, state.Write(ctx, "todos", []any{map[string]any{"title": "walk dog"}}))

	second := newRecordedManager(t, backend, start.Add(2*time.Hour))
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	_, err = second.Get(s.ID, "")
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, 1, second.Sweep(ctx))

	keys, err := state.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	records, err := backend.Open(ctx, RecordsNamespace)
	require.NoError(t, err)
	keys, err = records.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDelete_KeepsRecordWhenCleanupFails(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryBackend()
	records, err := backend.Open(ctx, RecordsNamespace)
	require.NoError(t, err)

	m := NewManager(time.Hour, func(context.Context, string) error {
		return errors.New("backend down")
	}, WithRecords(records))

	s := create(t, m, "")
	assert.Error(t, m.Delete(ctx, s.ID, ""))

	keys, err := records.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, keys)
}
