package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	const query = `SELECT a FROM t WHERE b = ? AND c = ?`
	assert.Equal(t, query, New(nil, SQLite).rebind(query))
	assert.Equal(t, `SELECT a FROM t WHERE b = $1 AND c = $2`, New(nil, Postgres).rebind(query))
}

func TestDialectOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Postgres, DialectOf("postgres://u:p@localhost/mercato"))
	assert.Equal(t, Postgres, DialectOf("postgresql://localhost/mercato"))
	assert.Equal(t, SQLite, DialectOf("/tmp/mercato.sqlite"))
	assert.Equal(t, SQLite, DialectOf(":memory:"))
	assert.Equal(t, "postgres://***@localhost/mercato", redact("postgres://u:p@localhost/mercato"))
}
