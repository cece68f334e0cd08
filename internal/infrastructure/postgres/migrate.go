package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Esquemas con migraciones embebidas.
const (
	SchemaApps = "apps"
	SchemaCore = "core"
)

// Migrate aplica (up) o revierte un paso (down) las migraciones embebidas del esquema indicado.
// dsn es un connection string postgres://; se traduce al esquema pgx5:// del driver.
func Migrate(dsn, schema, direction string) (version uint, dirty bool, err error) {
	if schema != SchemaApps && schema != SchemaCore {
		return 0, false, fmt.Errorf("esquema desconocido: %q", schema)
	}
	src, err := iofs.New(migrationsFS, "migrations/"+schema)
	if err != nil {
		return 0, false, fmt.Errorf("abrir migraciones %s: %w", schema, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, toPgx5URL(dsn))
	if err != nil {
		return 0, false, fmt.Errorf("inicializar migrate: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		return 0, false, fmt.Errorf("dirección desconocida: %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("migrate %s %s: %w", schema, direction, err)
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func toPgx5URL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
