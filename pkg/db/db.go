package db

import (
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/jmoiron/sqlx"
)

// DB is a pool of zero or more underlying connections to
// the execution history database. forkplan only reads from it.
type DB struct {
	conn   *sqlx.DB
	logger lumber.Logger
}

// Execute executes a function. Any error that is returned from the function is returned
// from the Execute() method.
func (db *DB) Execute(fn func(conn *sqlx.DB) error) (err error) {
	err = fn(db.conn)
	if err != nil {
		db.logger.Debugf("query failed, error: %v", err)
	}
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
