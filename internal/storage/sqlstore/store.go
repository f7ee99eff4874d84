// Package sqlstore implements storage.Repository on database/sql for both
// the SQLite and PostgreSQL backends. Queries are written with ? bind
// parameters and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eliasosarumwense/Habital-sub003/internal/migration"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a repository over a *sql.DB, or over a *sql.Tx inside InTx.
type Store struct {
	db      *sql.DB
	q       querier
	dialect migration.Dialect
	inTx    bool
}

// New wraps db.
func New(db *sql.DB, dialect migration.Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() migration.Dialect {
	return s.dialect
}

// InTx runs fn inside a transaction. Nested calls reuse the outer
// transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &Store{db: s.db, q: tx, dialect: s.dialect, inTx: true}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for the dialect. Queries never contain a
// literal question mark.
func (s *Store) rebind(query string) string {
	if s.dialect != migration.DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteString(s.dialect.Placeholder(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.rebind(query), args...)
}

func tableFor(kind storage.Kind) (string, error) {
	switch kind {
	case storage.KindList:
		return "habit_lists", nil
	case storage.KindHabit:
		return "habits", nil
	case storage.KindPattern:
		return "repeat_patterns", nil
	case storage.KindCompletion:
		return "completions", nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

func (s *Store) Count(ctx context.Context, kind storage.Kind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) DeleteAll(ctx context.Context, kind storage.Kind) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.InTx(ctx, func(tx storage.Repository) error {
		ts := tx.(*Store)
		// Completions have no foreign key, so habits take theirs along.
		if kind == storage.KindHabit {
			if _, err := ts.exec(ctx, "DELETE FROM completions"); err != nil {
				return err
			}
			if _, err := ts.exec(ctx, "DELETE FROM repeat_patterns"); err != nil {
				return err
			}
		}
		if kind == storage.KindList {
			if _, err := ts.exec(ctx, "UPDATE habits SET list_id = NULL"); err != nil {
				return err
			}
		}
		res, err := ts.exec(ctx, "DELETE FROM "+table)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", table, err)
	}
	return n, nil
}

func notFound(kind storage.Kind, id fmt.Stringer) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

func checkAffected(res sql.Result, kind storage.Kind, id fmt.Stringer) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
