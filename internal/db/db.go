// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config selects the database backend.
//
// Driver values:
//   - "postgres": shared deployments, uses DATABASE_URL (or the DB_* vars)
//   - "sqlite":   single-binary deployments, uses SQLitePath
type Config struct {
	Driver     string
	URL        string
	SQLitePath string
}

// FromEnv builds a Config from environment variables with sqlite defaults,
// since a single WhatsApp session server usually runs as one process.
func FromEnv() Config {
	cfg := Config{
		Driver:     os.Getenv("DB_DRIVER"),
		URL:        os.Getenv("DATABASE_URL"),
		SQLitePath: os.Getenv("SQLITE_PATH"),
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "data/wablast.db"
	}
	if cfg.URL == "" {
		cfg.URL = urlFromParts()
	}
	return cfg
}

func urlFromParts() string {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user == "" || host == "" || name == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
}

// Open connects to the configured database and verifies the connection.
func Open(cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres driver selected but no DATABASE_URL or DB_* vars set")
		}
		conn, err := sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return conn, nil

	case "sqlite", "sqlite3":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		conn, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite prefers a single writer.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		_, _ = conn.Exec("PRAGMA journal_mode = WAL")
		_, _ = conn.Exec("PRAGMA busy_timeout = 5000")
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown db driver: %q", cfg.Driver)
}
