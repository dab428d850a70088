package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// inTx runs fn in a read-write unit of work.  Any error from fn, or a
// failed commit, rolls back every write fn made.
func inTx(ctx context.Context, store repository.Store, fn func(tx repository.Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// inReadTx runs fn in a read-only snapshot.
func inReadTx(ctx context.Context, store repository.Store, fn func(tx repository.Tx) error) error {
	tx, err := store.BeginRead(ctx)
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}
