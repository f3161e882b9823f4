// Package filters persists named presets of domain and field list text.
//
// Three backends share one interface: a JSON file in the layout the desktop
// tool wrote (filtros_salvos.json), a SQLite table, and a PostgreSQL table
// for shared deployments.
package filters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// ErrNotFound is returned by Get and Delete for an unknown name
var ErrNotFound = errors.New("filter not found")

// Store is a saved-filter repository. Save replaces an existing filter of
// the same name.
type Store interface {
	List(ctx context.Context) ([]model.SavedFilter, error)
	Get(ctx context.Context, name string) (model.SavedFilter, error)
	Save(ctx context.Context, f model.SavedFilter) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// DefaultSQLitePath is the SQLite database used when no path or dsn is set
const DefaultSQLitePath = "filters.db"

// Backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and locates a backend
type Config struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"` // file backend, or SQLite database when DSN is empty (filters.db while left at the JSON default)
	DSN     string `mapstructure:"dsn"`
}

// Open builds the store named by cfg.Backend
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		return NewFileStore(path), nil

	case BackendSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
		}
		// the JSON default belongs to the file backend
		if dsn == "" || dsn == DefaultPath {
			dsn = DefaultSQLitePath
		}
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, exporterrors.Wrap(exporterrors.FilterStore, "open sqlite filter store", err)
		}
		db.SetMaxOpenConns(1)
		return NewSQLStore(ctx, db, SQLite)

	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, exporterrors.New(exporterrors.FilterStore, "postgres filter store needs a dsn")
		}
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, exporterrors.Wrap(exporterrors.FilterStore, "open postgres filter store", err)
		}
		return NewSQLStore(ctx, db, Postgres)

	default:
		return nil, exporterrors.New(exporterrors.FilterStore, fmt.Sprintf("unknown filter backend %q", cfg.Backend))
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return exporterrors.New(exporterrors.FilterStore, "filter name is required")
	}
	return nil
}

func notFound(name string) error {
	return exporterrors.Wrap(exporterrors.FilterStore, fmt.Sprintf("filter %q", name), ErrNotFound)
}
