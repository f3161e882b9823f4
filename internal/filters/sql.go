package filters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// Dialect covers the differences between the SQL backends
type Dialect struct {
	Name          string
	TimestampType string
	Numbered      bool // $1, $2 ... instead of ?
}

var (
	SQLite   = Dialect{Name: "sqlite", TimestampType: "DATETIME"}
	Postgres = Dialect{Name: "postgres", TimestampType: "TIMESTAMPTZ", Numbered: true}
)

// rebind rewrites ? placeholders for dialects with numbered parameters
func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps filters in a saved_filters table. Each operation is a
// single statement, so concurrent writers need no extra locking.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates the table when missing
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect}
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS saved_filters (
		name TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		fields TEXT NOT NULL,
		updated_at %s NOT NULL
	);`, dialect.TimestampType)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "create saved_filters table", err)
	}
	return s, nil
}

func (s *SQLStore) List(ctx context.Context) ([]model.SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, domain, fields, updated_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "list filters", err)
	}
	defer rows.Close()

	out := []model.SavedFilter{}
	for rows.Next() {
		var f model.SavedFilter
		if err := rows.Scan(&f.Name, &f.Domain, &f.Fields, &f.UpdatedAt); err != nil {
			return nil, exporterrors.Wrap(exporterrors.FilterStore, "scan filter", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, exporterrors.Wrap(exporterrors.FilterStore, "list filters", err)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, name string) (model.SavedFilter, error) {
	var f model.SavedFilter
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT name, domain, fields, updated_at FROM saved_filters WHERE name = ?`), name).
		Scan(&f.Name, &f.Domain, &f.Fields, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedFilter{}, notFound(name)
	}
	if err != nil {
		return model.SavedFilter{}, exporterrors.Wrap(exporterrors.FilterStore, fmt.Sprintf("get filter %q", name), err)
	}
	return f, nil
}

func (s *SQLStore) Save(ctx context.Context, f model.SavedFilter) error {
	if err := validName(f.Name); err != nil {
		return err
	}
	query := s.dialect.rebind(`
	INSERT INTO saved_filters (name, domain, fields, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE SET
		domain = excluded.domain,
		fields = excluded.fields,
		updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, f.Name, f.Domain, f.Fields, time.Now().UTC()); err != nil {
		return exporterrors.Wrap(exporterrors.FilterStore, fmt.Sprintf("save filter %q", f.Name), err)
	}
	log.Printf("[filters] saved %q (%s)", f.Name, s.dialect.Name)
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM saved_filters WHERE name = ?`), name)
	if err != nil {
		return exporterrors.Wrap(exporterrors.FilterStore, fmt.Sprintf("delete filter %q", name), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(name)
	}
	log.Printf("[filters] deleted %q (%s)", name, s.dialect.Name)
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
