package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := Open(ctx, path, false, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	version, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"titles", "refresh_state"} {
		var name string
		err := db.Conn().QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	applied, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied, "second migrate is a no-op")
}

func TestOpen_DevModeUsesFreshDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := Open(ctx, path, true, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DevPath(path), db.Path())

	_, err = db.Conn().ExecContext(ctx, "INSERT INTO refresh_state (region, status, last_updated) VALUES ('UK', 'pending', '2024-01-01 00:00:00')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path, true, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM refresh_state").Scan(&count))
	assert.Zero(t, count)
}

func TestSchema_Constraints(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "c.db"), false, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	insert := `INSERT INTO titles (id, region, generation, external_id, title, rating, content_type, created_at, updated_at)
		VALUES (?, 'UK', 1, ?, 'x', ?, ?, '2024-01-01 00:00:00', '2024-01-01 00:00:00')`

	_, err = db.Conn().ExecContext(ctx, insert, "a", "1", "12", "movie")
	require.NoError(t, err)

	_, err = db.Conn().ExecContext(ctx, insert, "b", "2", "12A", "movie")
	assert.Error(t, err, "rating outside the closed set")

	_, err = db.Conn().ExecContext(ctx, insert, "c", "3", "15", "podcast")
	assert.Error(t, err, "content type outside the closed set")

	_, err = db.Conn().ExecContext(ctx, insert, "d", "4", nil, "tv_series")
	assert.NoError(t, err, "absent rating is allowed")

	state := `INSERT INTO refresh_state (region, status, last_updated, is_active) VALUES ('UK', 'pending', '2024-01-01 00:00:00', ?)`
	_, err = db.Conn().ExecContext(ctx, state, 1)
	require.NoError(t, err)
	_, err = db.Conn().ExecContext(ctx, state, 1)
	assert.Error(t, err, "only one active row per region")
	_, err = db.Conn().ExecContext(ctx, state, 0)
	assert.NoError(t, err)
}

func TestDevPath(t *testing.T) {
	assert.Equal(t, "data/flixcat_dev.db", DevPath("data/flixcat.db"))
	assert.Equal(t, "catalog_dev", DevPath("catalog"))
}

func TestMigrateDown_RollsBackAndReapplies(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "c.db"), false, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.MigrateDown(ctx))

	version, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)

	var count int
	require.NoError(t, db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('titles', 'refresh_state')").Scan(&count))
	assert.Zero(t, count, "schema dropped")

	applied, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}
