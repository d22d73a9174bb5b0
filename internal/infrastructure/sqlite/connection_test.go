package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", DSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", DSN("file:x?mode=memory"))
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	db, err := NewConnection(ctx, "file:fk_test?mode=memory")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE parent (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent(id), name TEXT UNIQUE)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO child (parent_id, name) VALUES (99, 'a')`)
	assert.True(t, IsForeignKeyViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO parent (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO child (parent_id, name) VALUES (1, 'a')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO child (parent_id, name) VALUES (1, 'a')`)
	assert.True(t, IsUniqueViolation(err))
}
