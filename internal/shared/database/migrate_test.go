package database

import (
	"testing"

	"venuecap/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS waitlist_entries, capacity_holds, resources, users CASCADE").Error)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = 'chk_resources_balanced'`).Scan(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM pg_indexes WHERE indexname = 'idx_waitlist_entries_active_pair'`).Scan(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBalanceConstraintRejectsDrift(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS waitlist_entries, capacity_holds, resources, users CASCADE").Error)
	require.NoError(t, Migrate(db))

	err := db.Exec(`INSERT INTO resources (id, name, venue, starts_at, status, total_capacity, available, reserved, held, blocked, allows_reservations, max_group_size, created_by, created_at, updated_at)
		VALUES (gen_random_uuid(), 'Drift', 'Hall', now(), 'scheduled', 10, 9, 0, 0, 0, true, 0, gen_random_uuid(), now(), now())`).Error
	assert.Error(t, err)
}
