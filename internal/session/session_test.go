package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelasq/taskhub/internal/auth"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	return NewManager(auth.NewManager("test-secret", time.Hour), NewMemoryStore(), nil)
}

func TestCreateThenResolve(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	rec, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice-id", rec.UserID)
}

func TestResolve_GarbageToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDestroyThenResolve(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, token))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	// destroying twice is still not an error
	require.NoError(t, m.Destroy(ctx, token))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolve_RejectsTokenSignedElsewhere(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	m := NewManager(auth.NewManager("real-secret", time.Hour), store, nil)
	forged := NewManager(auth.NewManager("other-secret", time.Hour), store, nil)

	ctx := context.Background()

	_, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)

	forgedToken, err := forged.Create(ctx, "alice-id")
	require.NoError(t, err)

	// the record exists (shared store) but the signature does not verify
	_, err = m.Resolve(ctx, forgedToken)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDestroyAllForUser_KeepsCurrent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx := context.Background()

	tok1, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)
	tok2, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)
	bobTok, err := m.Create(ctx, "bob-id")
	require.NoError(t, err)

	rec1, err := m.Resolve(ctx, tok1)
	require.NoError(t, err)

	require.NoError(t, m.DestroyAllForUser(ctx, "alice-id", rec1.JTI))

	_, err = m.Resolve(ctx, tok1)
	assert.NoError(t, err, "the kept session must survive")

	_, err = m.Resolve(ctx, tok2)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Resolve(ctx, bobTok)
	assert.NoError(t, err, "other users' sessions are untouched")
}

func TestDestroyAllForUser_All(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx := context.Background()

	tok1, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)
	tok2, err := m.Create(ctx, "alice-id")
	require.NoError(t, err)

	require.NoError(t, m.DestroyAllForUser(ctx, "alice-id", ""))

	_, err = m.Resolve(ctx, tok1)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Resolve(ctx, tok2)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Record{
		JTI:       "j1",
		UserID:    "u1",
		TokenHash: "h1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := store.Get(ctx, "j1")
	assert.ErrorIs(t, err, ErrNoSession)
}
