// package repositories provides the SQLite persistence used by the client.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoRows is returned when a lookup matches nothing.
var ErrNoRows = errors.New("no rows")

// withTx runs fn inside a transaction and commits when fn returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
