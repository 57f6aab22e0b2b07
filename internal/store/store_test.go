package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"kvstore/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(metrics.New("test"))
}

func TestStoreSet_Get(t *testing.T) {
	store := newTestStore()

	t.Run("set and get existing key", func(t *testing.T) {
		doc := json.RawMessage(`{"_id":"123","name":"John Doe"}`)
		require.NoError(t, store.Set("123", doc, 0))

		val, ok := store.Get("123")
		require.True(t, ok)
		assert.JSONEq(t, string(doc), string(val))
	})

	t.Run("get non-existing key", func(t *testing.T) {
		_, ok := store.Get("missing")
		assert.False(t, ok)
	})

	t.Run("negative ttl is rejected", func(t *testing.T) {
		err := store.Set("bad", json.RawMessage(`1`), -time.Second)
		assert.ErrorIs(t, err, ErrInvalidTTL)

		_, ok := store.Get("bad")
		assert.False(t, ok, "a rejected Set must not store anything")
	})
}

func TestStoreExpiry(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("temp", json.RawMessage(`"v"`), 30*time.Millisecond))

	val, ok := store.Get("temp")
	require.True(t, ok, "entry should be live before its expiry")
	assert.Equal(t, `"v"`, string(val))

	time.Sleep(50 * time.Millisecond)

	// No sweep has run; logical expiry alone must hide the entry.
	_, ok = store.Get("temp")
	assert.False(t, ok)

	_, _, ok = store.GetTTL("temp")
	assert.False(t, ok)
}

func TestStoreOverwriteReplacesValueAndExpiry(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("k", json.RawMessage(`"v1"`), 0))
	require.NoError(t, store.Set("k", json.RawMessage(`"v2"`), 5*time.Second))

	val, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, `"v2"`, string(val))

	remaining, hasExpiry, ok := store.GetTTL("k")
	require.True(t, ok)
	assert.True(t, hasExpiry, "overwrite must carry the new expiry")
	assert.Greater(t, remaining, 4*time.Second)
	assert.LessOrEqual(t, remaining, 5*time.Second)

	// Overwriting again without a ttl clears the expiry.
	require.NoError(t, store.Set("k", json.RawMessage(`"v3"`), 0))

	_, hasExpiry, ok = store.GetTTL("k")
	require.True(t, ok)
	assert.False(t, hasExpiry)
}

func TestStoreDeleteIdempotence(t *testing.T) {
	store := newTestStore()

	assert.False(t, store.Delete("absent"))

	require.NoError(t, store.Set("k", json.RawMessage(`1`), 0))
	assert.True(t, store.Delete("k"))
	assert.False(t, store.Delete("k"))
}

func TestStoreGetAll(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("a", json.RawMessage(`1`), 0))
	require.NoError(t, store.Set("b", json.RawMessage(`2`), 0))
	store.Delete("a")

	result := store.GetAll()
	assert.Len(t, result, 1)

	entry, ok := result["b"]
	require.True(t, ok)
	assert.Equal(t, `2`, string(entry.Value))
}

func TestStoreGetAll_FiltersExpiredKeys(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("alive", json.RawMessage(`"ok"`), time.Minute))
	require.NoError(t, store.Set("expired", json.RawMessage(`"gone"`), 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)

	result := store.GetAll()

	_, okAlive := result["alive"]
	_, okExpired := result["expired"]

	assert.True(t, okAlive, "non-expired key should be listed")
	assert.False(t, okExpired, "expired key should not be listed")
}

func TestStoreGetTTL(t *testing.T) {
	store := newTestStore()

	t.Run("no expiry is a distinct sentinel", func(t *testing.T) {
		require.NoError(t, store.Set("forever", json.RawMessage(`1`), 0))

		remaining, hasExpiry, ok := store.GetTTL("forever")
		require.True(t, ok)
		assert.False(t, hasExpiry)
		assert.Zero(t, remaining)
	})

	t.Run("live entry reports positive remaining", func(t *testing.T) {
		require.NoError(t, store.Set("timed", json.RawMessage(`1`), time.Second))

		remaining, hasExpiry, ok := store.GetTTL("timed")
		require.True(t, ok)
		assert.True(t, hasExpiry)
		assert.Greater(t, remaining, time.Duration(0))
		assert.LessOrEqual(t, remaining, time.Second)
	})

	t.Run("missing key", func(t *testing.T) {
		_, _, ok := store.GetTTL("missing")
		assert.False(t, ok)
	})
}

func TestStoreConcurrentDistinctKeys(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	const n = 50

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := json.RawMessage(fmt.Sprintf(`{"n":%d}`, i))
			assert.NoError(t, store.Set(fmt.Sprintf("key-%d", i), doc, 0))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			val, ok := store.Get(fmt.Sprintf("key-%d", i))
			assert.True(t, ok)
			assert.Equal(t, fmt.Sprintf(`{"n":%d}`, i), string(val))
		}(i)
	}
	wg.Wait()
}

func TestStoreConcurrentSameKey_NoTornEntry(t *testing.T) {
	store := newTestStore()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	// One writer stores a value that never expires, the other a value with
	// an expiry an hour out. A reader must always see value and expiry from
	// the same write.
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = store.Set("k", json.RawMessage(`"forever"`), 0)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = store.Set("k", json.RawMessage(`"timed"`), time.Hour)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		entry, ok := store.GetAll()["k"]
		if !ok {
			continue
		}
		switch string(entry.Value) {
		case `"forever"`:
			assert.True(t, entry.ExpiresAt.IsZero(), "no-expiry value paired with an expiry")
		case `"timed"`:
			assert.False(t, entry.ExpiresAt.IsZero(), "timed value paired with no expiry")
		default:
			t.Fatalf("unexpected value %s", entry.Value)
		}
	}

	close(stop)
	wg.Wait()
}

func TestStoreRemoveExpired(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("dead", json.RawMessage(`1`), 20*time.Millisecond))
	require.NoError(t, store.Set("alive", json.RawMessage(`2`), 0))

	time.Sleep(40 * time.Millisecond)

	removed := store.RemoveExpired()
	assert.Equal(t, 1, removed)

	_, ok := store.Get("dead")
	assert.False(t, ok)

	_, ok = store.Get("alive")
	assert.True(t, ok)
}

func TestStoreRemoveExpired_SparesReSetKey(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Set("k", json.RawMessage(`"old"`), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	// The key's first incarnation has expired, but a re-set with a later
	// expiry must survive the next sweep.
	require.NoError(t, store.Set("k", json.RawMessage(`"new"`), time.Hour))

	assert.Equal(t, 0, store.RemoveExpired())

	val, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, `"new"`, string(val))
}

func TestStoreGet_LazilyRemovesExpiredEntry(t *testing.T) {
	m := metrics.New("test")
	store := NewStore(m)

	require.NoError(t, store.Set("temp", json.RawMessage(`1`), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get("temp")
	assert.False(t, ok)

	snap := m.Snapshot()
	assert.Equal(t, float64(1), snap[metrics.ExpiredTotal])
	assert.Equal(t, float64(0), snap[metrics.KeysLive])
}
