package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/testutil"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var applied int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, len(migrations), applied)
}

func TestMigrateSeedsAssetTypes(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	rows, err := db.Query(`SELECT name FROM asset_types ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Electronics", "Furniture", "Equipment", "Vehicles", "Others"}, names)
}

func TestMigrateBackfillsMissingCodes(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	// simulate rows imported before codes existed
	_, err := db.Exec(`INSERT INTO assets (name, quantity, owner, building, department)
		VALUES ('Printer', 1, 'No Owner', 'HQ', 'IT'), ('Scanner', 1, 'No Owner', 'HQ', 'IT')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, db))

	rows, err := db.Query(`SELECT asset_code, qr_random_code FROM assets ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	codes := map[string]bool{}
	for rows.Next() {
		var code, random string
		require.NoError(t, rows.Scan(&code, &random))
		assert.NotEmpty(t, code)
		assert.NotEmpty(t, random)
		assert.False(t, codes[code], "codes must be unique")
		codes[code] = true
	}
	require.NoError(t, rows.Err())
}
