package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cadre-be/internal/db"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id string) (*Listing, error)

	// GetForUpdate loads the listing and holds its row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Listing, error)

	// MoveQuantity moves delta units from the available bucket to the sold
	// bucket (negative delta moves them back) as one conditional update.
	MoveQuantity(ctx context.Context, id string, delta int) (Stock, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const selectListing = `
	SELECT
		l.id, l.owner_id,
		COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.phone, ''),
		COALESCE(u.address, ''), COALESCE(u.city, ''),
		l.name, l.description, l.item_type, l.sizes,
		l.dimensions, l.width, l.height, l.depth,
		l.price, l.initial_quantity, l.current_quantity, l.sold_quantity,
		l.status, l.created_at, l.updated_at
	FROM listings l
	LEFT JOIN users u ON u.id = l.owner_id
	WHERE l.id = $1
`

func (r *repository) Create(ctx context.Context, l *Listing) error {
	query := `
		INSERT INTO listings (
			id, owner_id, name, description, item_type, sizes,
			dimensions, width, height, depth,
			price, initial_quantity, current_quantity, sold_quantity, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		l.ID,
		l.OwnerID,
		l.Name,
		l.Description,
		l.ItemType,
		pq.Array(l.Sizes),
		string(l.Dimensions),
		l.Width,
		l.Height,
		l.Depth,
		l.Price,
		l.InitialQuantity,
		l.CurrentQuantity,
		l.SoldQuantity,
		string(l.Status),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Listing, error) {
	return r.get(ctx, selectListing, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*Listing, error) {
	return r.get(ctx, selectListing+" FOR UPDATE OF l", id)
}

func (r *repository) get(ctx context.Context, query, id string) (*Listing, error) {
	var (
		l          Listing
		dimensions string
		status     string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID,
		&l.OwnerID,
		&l.Owner.Name,
		&l.Owner.Email,
		&l.Owner.Phone,
		&l.Owner.Address,
		&l.Owner.City,
		&l.Name,
		&l.Description,
		&l.ItemType,
		pq.Array(&l.Sizes),
		&dimensions,
		&l.Width,
		&l.Height,
		&l.Depth,
		&l.Price,
		&l.InitialQuantity,
		&l.CurrentQuantity,
		&l.SoldQuantity,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select listing %s: %w", id, err)
	}

	l.Owner.ID = l.OwnerID
	l.Dimensions = Dimensions(dimensions)
	l.Status = Status(status)

	return &l, nil
}

func (r *repository) MoveQuantity(ctx context.Context, id string, delta int) (Stock, error) {
	query := `
		UPDATE listings
		SET
			current_quantity = current_quantity - $2,
			sold_quantity = sold_quantity + $2,
			updated_at = NOW()
		WHERE id = $1
		  AND current_quantity >= $2
		  AND sold_quantity >= -$2
		RETURNING current_quantity, sold_quantity
	`

	var s Stock
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&s.CurrentQuantity, &s.SoldQuantity)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Stock{}, fmt.Errorf("move quantity on listing %s: %w", id, err)
	}

	// Nothing matched: find out whether the row is missing or the guard failed.
	err = r.db.QueryRowContext(ctx,
		`SELECT current_quantity, sold_quantity FROM listings WHERE id = $1`, id,
	).Scan(&s.CurrentQuantity, &s.SoldQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return Stock{}, ErrListingNotFound
	}
	if err != nil {
		return Stock{}, fmt.Errorf("select listing stock %s: %w", id, err)
	}

	if delta > 0 {
		return s, &StockError{ListingID: id, Requested: delta, Available: s.CurrentQuantity}
	}
	return s, fmt.Errorf("%w: listing %s has %d sold, asked to return %d",
		ErrOverRelease, id, s.SoldQuantity, -delta)
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("update listing status %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrListingNotFound
	}

	return nil
}
