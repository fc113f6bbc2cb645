package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Dir directorio de las migraciones dentro del FS embebido.
const Dir = "migrations"

// Files devuelve los nombres de las migraciones embebidas, en orden.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(embedded, Dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Run ejecuta un comando de goose (up, down, status, version, redo, reset)
// sobre las migraciones embebidas.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("migrate: db es obligatorio")
	}
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, Dir, args...); err != nil {
		return fmt.Errorf("migrate: goose %s: %w", command, err)
	}
	return nil
}

// ToVersion sube o baja hasta la versión indicada según la versión actual de la base.
func ToVersion(ctx context.Context, db *sql.DB, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return fmt.Errorf("migrate: versión inválida %q: %w", version, err)
	}
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: versión actual: %w", err)
	}
	switch {
	case current == target:
		return nil
	case current < target:
		return goose.UpToContext(ctx, db, Dir, target)
	default:
		return goose.DownToContext(ctx, db, Dir, target)
	}
}

// AutoRun aplica "up" usando el pool de la aplicación (MIGRATIONS_AUTORUN=true).
func AutoRun(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	log.Info().Str("dir", Dir).Msg("aplicando migraciones")
	if err := Run(ctx, db, "up"); err != nil {
		return err
	}
	log.Info().Msg("migraciones aplicadas")
	return nil
}
