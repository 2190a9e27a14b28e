package core

import (
	"github.com/jmoiron/sqlx"
)

// DB represents the MySQL client
type DB interface {
	// Close closes the db connection.
	Close() error

	// Execute wrapper for executing the queries.
	Execute(fn func(conn *sqlx.DB) error) (err error)
}
