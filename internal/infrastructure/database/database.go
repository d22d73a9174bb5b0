package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"mfgtrack/internal/config"
	"mfgtrack/internal/infrastructure/mysql"
	"mfgtrack/internal/infrastructure/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Open connects to the configured driver and, when enabled, creates any
// missing tables.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverMySQL:
		db, err = mysql.NewConnection(ctx, cfg)
	case config.DriverSQLite:
		db, err = sqlite.NewConnection(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := EnsureSchema(ctx, db, cfg.Driver); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// EnsureSchema runs the CREATE ... IF NOT EXISTS statements for driver.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	data, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("reading schema for %s: %w", driver, err)
	}

	for _, stmt := range SplitStatements(string(data)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %q: %w", firstLine(stmt), err)
		}
	}

	return nil
}

// SplitStatements splits a schema file on semicolons. The schema files hold
// no string literals containing semicolons.
func SplitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func IsUniqueViolation(err error) bool {
	return mysql.IsDuplicateKey(err) || sqlite.IsUniqueViolation(err)
}

func IsForeignKeyViolation(err error) bool {
	return mysql.IsForeignKeyViolation(err) || sqlite.IsForeignKeyViolation(err)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
