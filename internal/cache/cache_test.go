package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	e, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, e)

	stamp := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, m.Set(ctx, 1, &Entry{Stamp: stamp, Payload: json.RawMessage(`{"risk":"Low"}`)}))

	e, err = m.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.JSONEq(t, `{"risk":"Low"}`, string(e.Payload))
	assert.True(t, e.FreshFor(&stamp))

	later := stamp.Add(time.Second)
	assert.False(t, e.FreshFor(&later))
	assert.False(t, e.FreshFor(nil))

	require.NoError(t, m.Invalidate(ctx, 1))
	e, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, 7, &Entry{Stamp: now}))
	now = now.Add(30 * time.Second)
	e, _ := m.Get(ctx, 7)
	assert.NotNil(t, e)

	now = now.Add(time.Minute)
	e, _ = m.Get(ctx, 7)
	assert.Nil(t, e)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "analysis:42", key(42))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", time.Minute)
	assert.Error(t, err)
}
