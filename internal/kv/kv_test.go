package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todoState struct {
	Todos []map[string]any `json:"todos"`
}

// runs the same behaviour checks against every backend
func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	store, err := backend.Open(ctx, "session-a")
	require.NoError(t, err)

	v, ok, err := store.Read(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	require.NoError(t, store.Write(ctx, "todos", []map[string]any{{"title": "milk", "done": false}}))
	require.NoError(t, store.Write(ctx, "count", 3))

	v, ok, err = store.Read(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{map[string]any{"title": "milk", "done": false}}, v)

	// overwrite
	require.NoError(t, store.Write(ctx, "count", 4))
	v, _, err = store.Read(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, float64(4), v)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "todos"}, keys)

	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// namespaces are isolated
	other, err := backend.Open(ctx, "session-b")
	require.NoError(t, err)
	otherKeys, err := other.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, otherKeys)

	require.NoError(t, store.Delete(ctx, "count"))
	require.NoError(t, store.Delete(ctx, "never-written"))
	keys, err = store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"todos"}, keys)

	require.NoError(t, backend.Drop(ctx, "session-a"))
	reopened, err := backend.Open(ctx, "session-a")
	require.NoError(t, err)
	all, err = reopened.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client)
	defer backend.Close() //nolint:errcheck

	exerciseBackend(t, backend)
}

func TestRedisBackendFromURL_InvalidURL(t *testing.T) {
	_, err := NewRedisBackendFromURL("not a url")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer backend.Close() //nolint:errcheck

	exerciseBackend(t, backend)
}

func TestNewMemoryStoreFrom(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   any
		keys    []string
		wantErr bool
	}{
		{name: "nil", input: nil, keys: []string{}},
		{name: "map", input: map[string]any{"a": 1, "b": "x"}, keys: []string{"a", "b"}},
		{name: "struct", input: todoState{Todos: []map[string]any{}}, keys: []string{"todos"}},
		{name: "string", input: "hello", wantErr: true},
		{name: "slice", input: []int{1, 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMemoryStoreFrom(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotObject)
				return
			}

			require.NoError(t, err)
			keys, err := store.ListKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, keys)
		})
	}
}

func TestMemoryStore_WriteRejectsUnencodable(t *testing.T) {
	store := NewMemoryStore()
	err := store.Write(context.Background(), "fn", func() {})
	assert.Error(t, err)
}

func TestDecodeAndSeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, Seed(ctx, store, map[string]any{
		"todos": []any{map[string]any{"title": "bread"}},
	}))

	var out todoState
	require.NoError(t, Decode(ctx, store, &out))
	require.Len(t, out.Todos, 1)
	assert.Equal(t, "bread", out.Todos[0]["title"])
}
