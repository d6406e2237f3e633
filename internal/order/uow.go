package order

import (
	"context"
	"database/sql"

	"cadre-be/internal/db"
	"cadre-be/internal/listing"
)

// Stores are the repositories one unit of work operates on.
type Stores struct {
	Orders   Repository
	Listings listing.Repository
}

// UnitOfWork runs fn atomically: either every write fn made is kept or none
// is. A non-nil error from fn rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error

	// View runs fn for reads only. It sees one consistent snapshot and must
	// not write through the stores.
	View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type sqlUnitOfWork struct {
	db *sql.DB
}

func NewSQLUnitOfWork(conn *sql.DB) UnitOfWork {
	return &sqlUnitOfWork{db: conn}
}

func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return db.WithTx(ctx, u.db, func(tx *sql.Tx) error {
		return fn(ctx, storesFor(tx))
	})
}

func (u *sqlUnitOfWork) View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return db.WithTxOptions(ctx, u.db, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		return fn(ctx, storesFor(tx))
	})
}

func storesFor(tx *sql.Tx) Stores {
	return Stores{
		Orders:   NewRepository(tx),
		Listings: listing.NewRepository(tx),
	}
}
