package repository

import (
	"context"
	"database/sql"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "repository").Logger()

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store groups the repositories over one database handle. A Store handed out
// by RunInTx has every repository bound to the same transaction.
type Store struct {
	db *sql.DB
	tx *sql.Tx

	Templates *TemplateRepository
	Users     *UserRepository
	Purchases *PurchaseRepository
	BankInfo  *BankInfoRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, nil, db)
}

func newStore(db *sql.DB, tx *sql.Tx, q DBTX) *Store {
	return &Store{
		db:        db,
		tx:        tx,
		Templates: NewTemplateRepository(q),
		Users:     NewUserRepository(q),
		Purchases: NewPurchaseRepository(q),
		BankInfo:  NewBankInfoRepository(q),
	}
}

// InTx reports whether the store is bound to an open transaction.
func (s *Store) InTx() bool {
	return s.tx != nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunInTx runs fn as one unit of work. The transaction pins a single pooled
// connection, commits when fn returns nil and rolls back on error or panic.
// The error returned by fn is passed through unchanged. Calling RunInTx on a
// store that is already inside a transaction joins that transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newStore(s.db, tx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error().Err(rbErr).Msg("Error rolling back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}
