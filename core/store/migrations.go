package store

import (
	"context"
	"database/sql"
	"embed"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations brings the schema up to date via goose. The dialect follows
// the configured driver; the SQL itself is written for the sqlite default.
func ApplyMigrations(ctx context.Context, db *sql.DB, driver string, logger *utils.Logger) error {
	dialect := "sqlite3"
	if d := strings.ToLower(strings.TrimSpace(driver)); d == "postgres" || d == "pgx" {
		dialect = "postgres"
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}
	if logger != nil {
		if v, err := goose.GetDBVersionContext(ctx, db); err == nil {
			logger.Printf("DB schema at goose version %d", v)
		}
	}
	return nil
}
