package core

import (
	"context"
	"database/sql"
	"io"

	"github.com/pkg/errors"
)

type (
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	// BlobStorage stores opaque file contents under a key.
	BlobStorage interface {
		// Put stores the content of r and returns a locator for it (URL or key).
		Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
		Get(ctx context.Context, key string) (io.ReadCloser, error)
		// Delete is idempotent: deleting a missing key is not an error.
		Delete(ctx context.Context, key string) error
	}
)

// WithTx runs fn inside a transaction, rolling back if it fails.
func WithTx(ctx context.Context, db DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
