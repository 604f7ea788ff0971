package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCartStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryCartStore()
	defer store.Close()
	ctx := context.Background()

	c := cart.New()
	productID := uuid.New()
	require.NoError(t, c.Add(productID, 2))
	require.NoError(t, store.Save(ctx, c, time.Hour))

	loaded, err := store.Get(ctx, c.Token)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, productID, loaded.Items[0].ProductID)
	assert.Equal(t, 2, loaded.Items[0].Quantity)

	// the store keeps its own copy
	loaded.Clear()
	again, err := store.Get(ctx, c.Token)
	require.NoError(t, err)
	assert.Len(t, again.Items, 1)
}

func TestInMemoryCartStore_Missing(t *testing.T) {
	store := NewInMemoryCartStore()
	defer store.Close()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInMemoryCartStore_Expiry(t *testing.T) {
	store := NewInMemoryCartStore()
	defer store.Close()
	ctx := context.Background()

	c := cart.New()
	customerID := uuid.New()
	c.AssignTo(customerID)
	require.NoError(t, store.Save(ctx, c, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, c.Token)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	token, err := store.TokenForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, token)

	store.cleanup()
	assert.Empty(t, store.carts)
	assert.Empty(t, store.customers)
}

func TestInMemoryCartStore_CustomerMapping(t *testing.T) {
	store := NewInMemoryCartStore()
	defer store.Close()
	ctx := context.Background()

	customerID := uuid.New()
	token, err := store.TokenForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, token)

	c := cart.New()
	c.AssignTo(customerID)
	require.NoError(t, store.Save(ctx, c, time.Hour))

	token, err = store.TokenForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, c.Token, token)

	require.NoError(t, store.Delete(ctx, c.Token))
	token, err = store.TokenForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, token)
	_, err = store.Get(ctx, c.Token)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
