// internal/entry/repository.go
//
// Repository abstraction and sqlx implementation.
//
// Context
// -------
// The repository source adapter depends only on the Repository
// interface, not on any storage technology.  SQLRepository is the
// shipped implementation: one table of configuration rows reached
// through an already-connected *sqlx.DB.
//
// Workflow
// --------
//  1. Callers supply a *sqlx.DB connected to the control-plane
//     database, plus the table name (default "config_entry").
//  2. Each helper executes exactly one parameterised SELECT.
//  3. Rows scan into Entry, which mirrors the schema.
//  4. Errors return verbatim so the poll layer can wrap and log them;
//     connectivity failures must stay visible for operational
//     diagnosis, they are never swallowed here.
//
// Notes
// -----
//   - `key` is a reserved word on MySQL, hence the backticks.
//   - Oxford commas, two spaces after periods.
package entry

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by ByKey when no row matches.
var ErrNotFound = errors.New("entry not found")

// DefaultTable is the conventional table name for configuration rows.
const DefaultTable = "config_entry"

// Repository is the persistence boundary the repository source polls.
type Repository interface {
	// All returns every configuration entry.  The result is a total
	// snapshot; callers treat it as the complete upstream key set.
	All(ctx context.Context) ([]Entry, error)

	// ByKey returns the entry for one key, or ErrNotFound.
	ByKey(ctx context.Context, key string) (*Entry, error)
}

// SQLRepository reads configuration rows through sqlx.
type SQLRepository struct {
	db    *sqlx.DB
	table string
}

// NewSQLRepository wires a repository over db.  An empty table name
// falls back to DefaultTable.
func NewSQLRepository(db *sqlx.DB, table string) *SQLRepository {
	if table == "" {
		table = DefaultTable
	}
	return &SQLRepository{db: db, table: table}
}

// All loads every row.  Respects request deadlines via ctx.
func (r *SQLRepository) All(ctx context.Context) ([]Entry, error) {
	q := "SELECT id, `key`, value, description FROM " + r.table
	var rows []Entry
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByKey loads a single row by key.
func (r *SQLRepository) ByKey(ctx context.Context, key string) (*Entry, error) {
	q := "SELECT id, `key`, value, description FROM " + r.table + " WHERE `key` = ? LIMIT 1"
	var e Entry
	if err := r.db.GetContext(ctx, &e, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
