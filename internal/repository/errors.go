package repository

import (
	"database/sql"
	"strings"

	sqlite "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("duplicate key value")
)

const (
	mysqlDuplicateEntry        = 1062
	sqliteConstraint           = 19
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey {
			return true
		}
		return code&0xff == sqliteConstraint && strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// translate maps driver errors onto the package sentinels and attaches a stack trace.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return errors.WithStack(ErrNotFound)
	case isDuplicateKey(err):
		return errors.Wrap(ErrDuplicate, err.Error())
	default:
		return errors.Wrap(err, msg)
	}
}
