package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/cart"
)

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	c := cart.NewStore(memory.NewKeyValueStore())

	require.NoError(t, c.Add(ctx, "p1"))
	require.NoError(t, c.Add(ctx, "p2"))
	require.NoError(t, c.Add(ctx, "p1"))

	lines, err := c.Lines(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}, lines)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		delta int
		want  []domain.CartLine
	}{
		{name: "increase", id: "p1", delta: 2, want: []domain.CartLine{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}}},
		{name: "decrease to zero removes", id: "p2", delta: -1, want: []domain.CartLine{{ProductID: "p1", Quantity: 1}}},
		{name: "below zero removes", id: "p1", delta: -5, want: []domain.CartLine{{ProductID: "p2", Quantity: 1}}},
		{name: "unknown id is no-op", id: "p9", delta: 1, want: []domain.CartLine{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := cart.NewStore(memory.NewKeyValueStore())
			require.NoError(t, c.Add(ctx, "p1"))
			require.NoError(t, c.Add(ctx, "p2"))

			require.NoError(t, c.UpdateQuantity(ctx, tt.id, tt.delta))

			lines, err := c.Lines(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, lines)
		})
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	c := cart.NewStore(memory.NewKeyValueStore())
	require.NoError(t, c.Add(ctx, "p1"))
	require.NoError(t, c.Add(ctx, "p2"))

	require.NoError(t, c.Remove(ctx, "p1"))
	lines, err := c.Lines(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p2", Quantity: 1}}, lines)

	require.NoError(t, c.Clear(ctx))
	lines, err = c.Lines(ctx)
	require.NoError(t, err)
	require.Empty(t, lines)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}
