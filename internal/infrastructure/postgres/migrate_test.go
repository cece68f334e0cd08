package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", toPgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u:p@h/db", toPgx5URL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://h/db", toPgx5URL("pgx5://h/db"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	for _, schema := range []string{SchemaApps, SchemaCore} {
		ups, err := fs.Glob(migrationsFS, "migrations/"+schema+"/*.up.sql")
		require.NoError(t, err)
		downs, err := fs.Glob(migrationsFS, "migrations/"+schema+"/*.down.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, ups, schema)
		assert.Len(t, downs, len(ups), "cada up tiene su down en %s", schema)
	}
}

func TestMigrate_EsquemaDesconocido(t *testing.T) {
	_, _, err := Migrate("postgres://localhost/db", "otro", "up")
	assert.Error(t, err)
}
