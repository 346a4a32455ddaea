package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()

	require.NoError(t, err)
	assert.Len(t, id, sessionIDLength)
	for _, r := range id {
		assert.Contains(t, sessionIDAlphabet, string(r))
	}
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	t.Run("Created session can be looked up", func(t *testing.T) {
		// Given: a fresh registry
		registry := NewRegistry()
		t.Cleanup(registry.Close)

		// When: a session is created
		created, err := registry.Create()
		require.NoError(t, err)

		// Then: it is found by its id and starts empty
		found, err := registry.Get(created.ID())
		require.NoError(t, err)
		assert.Same(t, created, found)

		summary, err := found.Summary()
		require.NoError(t, err)
		assert.Equal(t, 0, summary.PlayerCount)
		assert.False(t, summary.GameActive)
	})

	t.Run("Unknown id is not found", func(t *testing.T) {
		registry := NewRegistry()

		_, err := registry.Get("NOPE42")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Remove is idempotent and stops the session", func(t *testing.T) {
		registry := NewRegistry()
		created, err := registry.Create()
		require.NoError(t, err)

		registry.Remove(created.ID())
		registry.Remove(created.ID())

		_, err = registry.Get(created.ID())
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)

		_, err = created.Join("p1", nil)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Equal(t, 0, registry.Len())
	})
}

func TestRegistry_Create_Collisions(t *testing.T) {
	t.Run("Retries until an unused id comes up", func(t *testing.T) {
		ids := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
		next := 0
		registry := NewRegistry(WithIDGenerator(func() (string, error) {
			id := ids[next]
			next++
			return id, nil
		}))
		t.Cleanup(registry.Close)

		first, err := registry.Create()
		require.NoError(t, err)
		second, err := registry.Create()
		require.NoError(t, err)

		assert.Equal(t, "AAAAAA", first.ID())
		assert.Equal(t, "BBBBBB", second.ID())
	})

	t.Run("Gives up when every attempt collides", func(t *testing.T) {
		registry := NewRegistry(WithIDGenerator(func() (string, error) {
			return "SAME00", nil
		}))
		t.Cleanup(registry.Close)

		_, err := registry.Create()
		require.NoError(t, err)

		_, err = registry.Create()
		require.ErrorIs(t, err, apperror.ErrIDSpaceExhausted)
	})

	t.Run("Generator failure is returned", func(t *testing.T) {
		errNoEntropy := errors.New("no entropy")
		registry := NewRegistry(WithIDGenerator(func() (string, error) {
			return "", errNoEntropy
		}))

		_, err := registry.Create()
		require.ErrorIs(t, err, errNoEntropy)
	})
}

func TestRegistry_List(t *testing.T) {
	counter := 0
	registry := NewRegistry(WithIDGenerator(func() (string, error) {
		counter++
		return fmt.Sprintf("S%05d", counter), nil
	}))
	t.Cleanup(registry.Close)

	first, err := registry.Create()
	require.NoError(t, err)
	second, err := registry.Create()
	require.NoError(t, err)

	_, err = second.Join("p1", nil)
	require.NoError(t, err)
	_, err = second.Join("p2", nil)
	require.NoError(t, err)

	summaries := registry.List()

	require.Len(t, summaries, 2)
	assert.Equal(t, first.ID(), summaries[0].ID)
	assert.Equal(t, 0, summaries[0].PlayerCount)
	assert.Equal(t, second.ID(), summaries[1].ID)
	assert.Equal(t, 2, summaries[1].PlayerCount)
	assert.True(t, summaries[1].GameActive)
}

func TestRegistry_IndependentRegistries(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	t.Cleanup(a.Close)
	t.Cleanup(b.Close)

	created, err := a.Create()
	require.NoError(t, err)

	_, err = b.Get(created.ID())
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	registry := NewRegistry()
	t.Cleanup(registry.Close)

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := registry.Create()
			if err == nil {
				ids <- created.ID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
	assert.Equal(t, 50, registry.Len())
}

func TestRegistry_Reap(t *testing.T) {
	t.Run("Removes sessions no socket joined", func(t *testing.T) {
		// Given: one session reserved over REST and one with a live connection
		registry := NewRegistry()
		t.Cleanup(registry.Close)

		idle, err := registry.Create()
		require.NoError(t, err)
		_, err = idle.Reserve("p1")
		require.NoError(t, err)

		live, err := registry.Create()
		require.NoError(t, err)
		_, err = live.Join("p2", &fakeConn{name: "p2"})
		require.NoError(t, err)

		// When: the registry is reaped with a cutoff after both were touched
		reaped := registry.Reap(time.Now().Add(time.Minute))

		// Then: only the detached session is gone
		assert.Equal(t, []string{idle.ID()}, reaped)
		_, err = registry.Get(idle.ID())
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		_, err = registry.Get(live.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("Keeps sessions touched after the cutoff", func(t *testing.T) {
		// Given: a session created just now
		registry := NewRegistry()
		t.Cleanup(registry.Close)

		_, err := registry.Create()
		require.NoError(t, err)

		// When: the cutoff lies in the past
		reaped := registry.Reap(time.Now().Add(-time.Minute))

		// Then: nothing is removed
		assert.Empty(t, reaped)
		assert.Equal(t, 1, registry.Len())
	})
}
