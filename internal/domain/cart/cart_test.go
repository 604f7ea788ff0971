package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	c := New()
	assert.Len(t, c.Token, 32)
	assert.True(t, c.IsEmpty())
	assert.NotEqual(t, c.Token, New().Token)
}

func TestCartAdd(t *testing.T) {
	c := New()
	p := uuid.New()

	require.NoError(t, c.Add(p, 2))
	require.NoError(t, c.Add(p, 3))
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)

	assert.Error(t, c.Add(p, 95))
	assert.Error(t, c.Add(uuid.New(), 0))
	assert.Error(t, c.Add(uuid.New(), 100))
	assert.Error(t, c.Add(uuid.Nil, 1))
	assert.Equal(t, 5, c.ItemCount())
}

func TestCartLineLimit(t *testing.T) {
	c := New()
	for range MaxCartLines {
		require.NoError(t, c.Add(uuid.New(), 1))
	}
	assert.Error(t, c.Add(uuid.New(), 1))
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	c := New()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Add(a, 1))
	require.NoError(t, c.Add(b, 1))

	require.NoError(t, c.SetQuantity(a, 4))
	assert.Equal(t, 4, c.Items[0].Quantity)

	require.NoError(t, c.SetQuantity(a, 0))
	assert.Equal(t, []uuid.UUID{b}, c.ProductIDs())

	assert.Error(t, c.SetQuantity(a, 1))
	assert.Error(t, c.SetQuantity(b, 100))

	c.Remove(uuid.New())
	c.Remove(b)
	assert.True(t, c.IsEmpty())
}

func TestCartMerge(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	user := New()
	require.NoError(t, user.Add(a, 90))

	guest := New()
	require.NoError(t, guest.Add(a, 20))
	require.NoError(t, guest.Add(b, 1))

	user.Merge(guest)
	require.Len(t, user.Items, 2)
	assert.Equal(t, MaxItemQuantity, user.Items[0].Quantity)
	assert.Equal(t, b, user.Items[1].ProductID)

	user.Merge(nil)
	assert.Len(t, user.Items, 2)
}

func TestCartAssignAndClear(t *testing.T) {
	c := New()
	id := uuid.New()
	c.AssignTo(id)
	assert.Equal(t, id, *c.CustomerID)

	require.NoError(t, c.Add(uuid.New(), 1))
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Items)
}
