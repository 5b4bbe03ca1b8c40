package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the principals table and the indexes the concurrency
// guarantees rely on. The unique email column (declared on the model) makes
// insert-if-absent race free, and the partial index below makes a second
// super admin row impossible no matter how requests interleave.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*Principal)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create principals table")
	}

	if _, err := db.NewCreateIndex().
		Model((*Principal)(nil)).
		Index("principals_super_admin_singleton_idx").
		Unique().
		Column("tier").
		Where("tier = 'SUPER_ADMIN'").
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create super admin index")
	}

	if _, err := db.NewCreateIndex().
		Model((*Principal)(nil)).
		Index("principals_pending_idx").
		Column("tier", "approved", "created_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create pending listing index")
	}

	return nil
}
