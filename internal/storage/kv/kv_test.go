package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
)

func TestLoadMissingKeyReturnsZeroValue(t *testing.T) {
	store := memory.NewKeyValueStore()

	lines, found, err := kv.Load[[]domain.CartLine](context.Background(), store, kv.KeyCart)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, lines)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()

	want := []domain.CartLine{{ProductID: "p1", Quantity: 2}}
	require.NoError(t, kv.Save(ctx, store, kv.KeyCart, want))

	raw, _, err := store.Get(ctx, kv.KeyCart)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"p1","quantity":2}]`, string(raw))

	got, found, err := kv.Load[[]domain.CartLine](ctx, store, kv.KeyCart)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)
}

func TestLoadCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()
	require.NoError(t, store.Set(ctx, kv.KeyOrders, []byte("{not json")))

	_, _, err := kv.Load[[]domain.Order](ctx, store, kv.KeyOrders)
	require.Error(t, err)
}
