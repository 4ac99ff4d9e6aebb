package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrConflict = fmt.Errorf("conflict")

// NewDB opens the configured database. The default driver is the embedded
// sqlite build; Postgres deployments set db_driver=postgres and db_url.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := "sqlite"
	if cfg != nil {
		driver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	}
	switch driver {
	case "postgres", "pgx":
		if cfg == nil || strings.TrimSpace(cfg.DBURL) == "" {
			return nil, fmt.Errorf("db_url required for postgres driver")
		}
		db, err := sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Printf("DB open driver=postgres")
		}
		return db, nil
	default:
		path := "data/bow.db"
		if cfg != nil && strings.TrimSpace(cfg.DBPath) != "" {
			path = cfg.DBPath
		}
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn := "file:" + path + "?" + url.Values{
			"_pragma": []string{"journal_mode(WAL)", "busy_timeout(5000)", "foreign_keys(1)"},
		}.Encode()
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent import jobs.
		db.SetMaxOpenConns(1)
		if logger != nil {
			logger.Printf("DB open driver=sqlite path=%s", path)
		}
		return db, nil
	}
}
