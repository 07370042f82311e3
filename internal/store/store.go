// Package store holds the SQL repositories. Every method runs against
// either the connection pool or, inside WithTx, a single transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

const mysqlDuplicateEntry = 1062

type Store struct {
	db      *sqlx.DB
	ext     sqlx.ExtContext
	inTx    bool
	numbers NumberFunc
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, ext: db, numbers: NewDocumentNumber}
}

// WithNumbers replaces the order/invoice number generator.
func (s *Store) WithNumbers(fn NumberFunc) *Store {
	s.numbers = fn
	return s
}

// WithTx runs fn inside one transaction. It commits when fn returns nil
// and rolls back on error or panic. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if err := fn(&Store{db: s.db, ext: tx, inTx: true, numbers: s.numbers}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Ping is used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func conflict(err error) error {
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	return err
}

// expectOne turns "no row matched" into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
