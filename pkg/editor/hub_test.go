package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHub_GetOrCreate(t *testing.T) {
	h := NewHub(HubOptions{})
	defer h.Close()

	a := h.GetOrCreate("")
	require.NotEmpty(t, a.ID)
	require.Equal(t, 1, h.Len())

	require.Same(t, a, h.GetOrCreate(a.ID))

	b := h.GetOrCreate("not-a-known-id")
	require.NotEqual(t, "not-a-known-id", b.ID)
	require.NotSame(t, a, b)
	require.Equal(t, 2, h.Len())

	got, ok := h.Get(b.ID)
	require.True(t, ok)
	require.Same(t, b, got)
}

func TestHub_SessionsAreIndependent(t *testing.T) {
	h := NewHub(HubOptions{})
	defer h.Close()

	a := h.GetOrCreate("")
	b := h.GetOrCreate("")
	require.NoError(t, a.UpdateFilter("sepia", "1"))

	require.Equal(t, "1", a.Filters()["sepia"].Value)
	require.Equal(t, "0", b.Filters()["sepia"].Value)
}

func TestHub_Remove(t *testing.T) {
	h := NewHub(HubOptions{})
	s := h.GetOrCreate("")
	ch, _, err := s.Subscribe()
	require.NoError(t, err)

	h.Remove(s.ID)
	_, ok := h.Get(s.ID)
	require.False(t, ok)
	require.Zero(t, h.Len())

	_, open := <-ch
	require.False(t, open)

	h.Remove("missing")
}

func TestHub_PruneIdle(t *testing.T) {
	h := NewHub(HubOptions{IdleTimeout: time.Minute})
	defer h.Close()

	s := h.GetOrCreate("")
	require.Zero(t, h.PruneIdle(time.Now()))
	require.Equal(t, 1, h.PruneIdle(time.Now().Add(2*time.Minute)))

	_, ok := h.Get(s.ID)
	require.False(t, ok)
}

func TestHub_EvictsLeastRecentlyUsed(t *testing.T) {
	h := NewHub(HubOptions{MaxSessions: 2})
	defer h.Close()

	oldest := h.GetOrCreate("")
	time.Sleep(2 * time.Millisecond)
	newer := h.GetOrCreate("")
	time.Sleep(2 * time.Millisecond)
	newest := h.GetOrCreate("")

	require.Equal(t, 2, h.Len())
	_, ok := h.Get(oldest.ID)
	require.False(t, ok)
	_, ok = h.Get(newer.ID)
	require.True(t, ok)
	_, ok = h.Get(newest.ID)
	require.True(t, ok)
}

func TestHub_RunClosesOnCancel(t *testing.T) {
	h := NewHub(HubOptions{})
	s := h.GetOrCreate("")
	ch, _, err := s.Subscribe()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
	require.Zero(t, h.Len())

	_, open := <-ch
	require.False(t, open)
}
