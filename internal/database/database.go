// Package database centralises sqlx connection helpers for the
// control-plane database that holds configuration entries.  The default
// driver is go-sql-driver/mysql, which also works with MariaDB and
// Cockroach when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(dsn)                              – conservative pool sizes.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//
// Both helpers Ping the database before returning so the daemon fails
// fast during bootstrap instead of at the first poll cycle.  Callers
// should Close() the returned *sqlx.DB on shutdown.
package database

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with sane defaults: 5 max open, 2 idle, and a
// 30-minute connection lifetime.  The repository source issues one
// SELECT per poll cycle, so the pool stays small.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 5, 2)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
