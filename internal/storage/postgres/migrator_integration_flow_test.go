package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var historyIndexes = []string{
	"idx_shopping_history_user_email",
	"idx_shopping_history_record_id",
	"idx_shopping_history_order_id",
}

func relationExists(t *testing.T, ctx context.Context, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	require.NoError(t, db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+name).Scan(&exists))
	return exists
}

func requireStatus(t *testing.T, ctx context.Context, store *Store, wantVersion int64, wantCount int) {
	t.Helper()
	version, count, err := store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, wantVersion, version, "version")
	require.Equal(t, wantCount, count, "applied migrations")
}

func TestMigrator_ShoppingHistorySchemaLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)
	db := store.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, store.MigrateDown(ctx, 100))
	requireStatus(t, ctx, store, 0, 0)
	require.False(t, relationExists(t, ctx, db, "shopping_history"))

	require.NoError(t, store.MigrateUp(ctx, 0))
	requireStatus(t, ctx, store, 2, 2)
	require.True(t, relationExists(t, ctx, db, "shopping_history"))
	for _, index := range historyIndexes {
		require.True(t, relationExists(t, ctx, db, index), index)
	}

	// повторный up ничего не меняет
	require.NoError(t, store.MigrateUp(ctx, 0))
	requireStatus(t, ctx, store, 2, 2)

	require.NoError(t, store.MigrateDown(ctx, 1))
	requireStatus(t, ctx, store, 1, 1)
	require.True(t, relationExists(t, ctx, db, "shopping_history"))
	for _, index := range historyIndexes {
		require.False(t, relationExists(t, ctx, db, index), index)
	}

	require.NoError(t, store.MigrateDown(ctx, 0))
	requireStatus(t, ctx, store, 0, 0)
	require.False(t, relationExists(t, ctx, db, "shopping_history"))

	require.NoError(t, store.MigrateDown(ctx, 1), "down on empty state is a no-op")
	require.NoError(t, store.MigrateUp(ctx, 1))
	requireStatus(t, ctx, store, 1, 1)
	require.NoError(t, store.MigrateUp(ctx, 0))
	requireStatus(t, ctx, store, 2, 2)
}

func TestMigrator_GuardsAndUnsupportedDirection(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.Error(t, nilStore.MigrateUp(ctx, 0))
	require.Error(t, nilStore.MigrateDown(ctx, 1))
	_, _, err := nilStore.MigrationStatus(ctx)
	require.Error(t, err)

	store := openRawPostgresStoreForIntegrationTest(t)
	require.Error(t, store.migrate(ctx, migrationDirection("sideways"), 0))
}
