package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-intelligence/internal/research"
)

func newTestRegistry(store Store) *Registry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)
	return NewRegistry(store, func() *research.Controller {
		return research.NewController(research.NewMockService(0), log, "default")
	}, log)
}

func TestRegistry_ResolveCreatesAndReuses(t *testing.T) {
	reg := newTestRegistry(NewMemoryStore(time.Hour))
	ctx := context.Background()

	id, ctrl, created, err := reg.Resolve(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)

	again, ctrl2, created, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)
	assert.Same(t, ctrl, ctrl2)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ResolveUnknownIDStartsNewSession(t *testing.T) {
	reg := newTestRegistry(NewMemoryStore(time.Hour))

	id, _, created, err := reg.Resolve(context.Background(), "forged")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "forged", id)
}

func TestRegistry_RedisBackedSessionsExpire(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	reg := newTestRegistry(store)
	ctx := context.Background()

	id, ctrl, _, err := reg.Resolve(ctx, "")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	newID, newCtrl, created, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, id, newID)
	assert.NotSame(t, ctrl, newCtrl)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Prune(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	reg := newTestRegistry(store)
	ctx := context.Background()

	_, _, _, err := reg.Resolve(ctx, "")
	require.NoError(t, err)
	keep, _, _, err := reg.Resolve(ctx, "")
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	_, _, _, err = reg.Resolve(ctx, keep)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)

	removed, err := reg.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg := newTestRegistry(NewMemoryStore(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestContext_RoundTrip(t *testing.T) {
	reg := newTestRegistry(NewMemoryStore(time.Minute))
	id, ctrl, _, err := reg.Resolve(context.Background(), "")
	require.NoError(t, err)

	ctx := NewContext(context.Background(), id, ctrl)
	gotID, gotCtrl, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Same(t, ctrl, gotCtrl)

	_, _, ok = FromContext(context.Background())
	assert.False(t, ok)
}
