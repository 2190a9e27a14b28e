package errors

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrRowsNotFound is returned when a history query matches no rows.
var ErrRowsNotFound = sql.ErrNoRows

// ErrUnknownTable is returned when the execution history table does not exist yet.
var ErrUnknownTable = New("execution history table missing")

// ErrAccessDenied is returned when the configured user may not read the history.
var ErrAccessDenied = New("mysql access denied")

// ERROR 1146 (42S02): Table doesn't exist
// ERROR 1142 (42000): SELECT command denied to user
const (
	mysqlNoSuchTableErrCode      = 1146
	mysqlTableAccessDeniedCode   = 1142
	mysqlDBAccessDeniedErrCode   = 1044
	mysqlUserAccessDeniedErrCode = 1045
)

// SQLError returns an error in this package if possible. The error return value
// is an error in this package if the given error maps to one, else the given
// error is returned.
func SQLError(err error) error {
	mysqlErr, ok := err.(*mysql.MySQLError)
	if !ok {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRowsNotFound
		}
		return err
	}
	switch mysqlErr.Number {
	case mysqlNoSuchTableErrCode:
		return ErrUnknownTable
	case mysqlTableAccessDeniedCode, mysqlDBAccessDeniedErrCode, mysqlUserAccessDeniedErrCode:
		return ErrAccessDenied
	}
	return mysqlErr
}
