// migrate aplica las migraciones embebidas de las bases apps y core.
//
// Uso: go run ./cmd/migrate [-schema apps|core|all] [-direction up|down]
// La base core se omite si no tiene datos de conexión.
package main

import (
	"flag"
	"os"

	"github.com/jhoicas/punchlist-api/internal/infrastructure/postgres"
	"github.com/jhoicas/punchlist-api/pkg/config"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

func main() {
	schema := flag.String("schema", "all", "esquema a migrar: apps, core o all")
	direction := flag.String("direction", "up", "up aplica todo; down revierte un paso")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	targets := map[string]config.DBConfig{
		postgres.SchemaApps: cfg.AppsDB,
		postgres.SchemaCore: cfg.CoreDB,
	}
	var order []string
	switch *schema {
	case "all":
		order = []string{postgres.SchemaCore, postgres.SchemaApps}
	case postgres.SchemaApps, postgres.SchemaCore:
		order = []string{*schema}
	default:
		log.Error().Str("schema", *schema).Msg("esquema desconocido")
		os.Exit(2)
	}

	failed := false
	for _, name := range order {
		db := targets[name]
		if !db.Enabled() {
			log.Warn().Str("schema", name).Msg("sin datos de conexión; se omite")
			continue
		}
		version, dirty, err := postgres.Migrate(db.ConnectionString(), name, *direction)
		if err != nil {
			log.Error().Err(err).Str("schema", name).Msg("migración fallida")
			failed = true
			continue
		}
		log.Info().
			Str("schema", name).
			Str("direction", *direction).
			Uint("version", version).
			Bool("dirty", dirty).
			Msg("migración aplicada")
	}
	if failed {
		os.Exit(1)
	}
}
