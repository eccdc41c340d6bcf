package postgres

import (
	"context"
	"database/sql"
	"fmt"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/jmoiron/sqlx"
)

// TxKey is the context key type for storing transaction
type TxKey struct{}

// Tx wraps sqlx.Tx and tracks savepoints for nested WithTx calls
type Tx struct {
	*sqlx.Tx
	depth int
	ID    string
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(TxKey{}).(*Tx)
	return tx, ok
}

func savepointName(depth int) string {
	return fmt.Sprintf("sp_%d", depth)
}

// begin opens a transaction, or a savepoint when ctx already carries one
func (db *DB) begin(ctx context.Context) (context.Context, *Tx, error) {
	if tx, ok := GetTx(ctx); ok {
		tx.depth++
		db.logger.Debugw("creating savepoint", "tx_id", tx.ID, "savepoint", savepointName(tx.depth))
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepointName(tx.depth)); err != nil {
			tx.depth--
			return ctx, nil, ierr.WithError(err).
				WithHint("Failed to create savepoint").
				Mark(ierr.ErrDatabase)
		}
		return ctx, tx, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}

	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	db.logger.Debugw("starting new transaction", "tx_id", tx.ID)
	return context.WithValue(ctx, TxKey{}, tx), tx, nil
}

func (db *DB) commit(ctx context.Context, tx *Tx) error {
	if tx.depth > 0 {
		sp := savepointName(tx.depth)
		tx.depth--
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to release savepoint").
				Mark(ierr.ErrDatabase)
		}
		return nil
	}

	db.logger.Debugw("committing transaction", "tx_id", tx.ID)
	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (db *DB) rollback(ctx context.Context, tx *Tx) error {
	if tx.depth > 0 {
		sp := savepointName(tx.depth)
		tx.depth--
		db.logger.Debugw("rolling back to savepoint", "tx_id", tx.ID, "savepoint", sp)
		_, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp)
		return err
	}

	db.logger.Debugw("rolling back transaction", "tx_id", tx.ID)
	return tx.Rollback()
}

// WithTx executes fn within a transaction. Nested calls use savepoints so an
// inner failure only undoes the inner unit.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, tx, err := db.begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = db.rollback(ctx, tx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		db.logger.Debugw("transaction failed", "tx_id", tx.ID, "error", err)
		if rbErr := db.rollback(ctx, tx); rbErr != nil {
			db.logger.Errorw("rollback failed", "tx_id", tx.ID, "error", rbErr)
		}
		return err
	}

	return db.commit(ctx, tx)
}
