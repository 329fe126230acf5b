package db

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending migrations. Already up to date is not
// an error.
func RunMigrations(dbURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, pgxURL(dbURL))

	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// migrate selects its driver by URL scheme; pgx/v5 registers as "pgx5".
func pgxURL(dbURL string) string {
	const pgScheme = "postgres://"

	if len(dbURL) > len(pgScheme) && dbURL[:len(pgScheme)] == pgScheme {
		return "pgx5://" + dbURL[len(pgScheme):]
	}

	return dbURL
}
