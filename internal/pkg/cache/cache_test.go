package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_TTLExpiry(t *testing.T) {
	c := NewLocal()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetEX(ctx, "k", "v", time.Second))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, "v", v)
	d, ok := c.RemainingTTL(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)

	now = now.Add(2 * time.Second)
	v, _ = c.Get(ctx, "k")
	assert.Empty(t, v)
	_, ok = c.RemainingTTL(ctx, "k")
	assert.False(t, ok)
}

func TestLayered_BackfillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewLocal(), NewLocal()
	lc := NewLayered(l1, l2)

	require.NoError(t, l2.SetEX(ctx, "k", "42", time.Minute))
	v, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, _ = l1.Get(ctx, "k")
	assert.Equal(t, "42", v)

	require.NoError(t, lc.Del(ctx, "k"))
	v, _ = lc.Get(ctx, "k")
	assert.Empty(t, v)
}

func TestLayered_NilL2(t *testing.T) {
	ctx := context.Background()
	lc := NewLayered(NewLocal(), nil)
	require.NoError(t, lc.SetEX(ctx, "a", "1", time.Minute))
	v, _ := lc.Get(ctx, "a")
	assert.Equal(t, "1", v)
	v, _ = lc.Get(ctx, "missing")
	assert.Empty(t, v)
}
