package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/inventario-cacc/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-cacc/pkg/config"
	"github.com/jhoicas/inventario-cacc/pkg/logger"
	"github.com/jhoicas/inventario-cacc/pkg/migrate"
)

func main() {
	cmd := flag.String("cmd", "up", "comando: up|down|status|version|redo|reset|list")
	version := flag.String("version", "", "versión destino para -cmd=version")
	flag.Parse()

	if *cmd == "list" {
		files, err := migrate.Files()
		if err != nil {
			fmt.Fprintf(os.Stderr, "listar migraciones: %v\n", err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	log.Info().Str("cmd", *cmd).Msg("migrate listo")

	switch *cmd {
	case "version":
		if *version == "" {
			log.Fatal().Msg("falta -version")
		}
		err = migrate.ToVersion(ctx, db, *version)
	case "up", "down", "status", "redo", "reset":
		err = migrate.Run(ctx, db, *cmd)
	default:
		log.Fatal().Str("cmd", *cmd).Msg("comando desconocido")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migración fallida")
	}
	log.Info().Msg("migración completada")
}
