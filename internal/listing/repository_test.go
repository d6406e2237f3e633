package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingColumns = []string{
	"id", "owner_id", "name", "email", "phone", "address", "city",
	"name", "description", "item_type", "sizes",
	"dimensions", "width", "height", "depth",
	"price", "initial_quantity", "current_quantity", "sold_quantity",
	"status", "created_at", "updated_at",
}

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(listingColumns).AddRow(
			"lst-1", "usr-1", "Mona", "mona@example.com", "0100", "1 Nile St", "Cairo",
			"Linen shirt", "hand made", "clothing", "{S,M}",
			"", nil, nil, nil,
			"1500.00", 5, 3, 2,
			"For Sale", now, now,
		)

		mock.ExpectQuery(`SELECT .* FROM listings l LEFT JOIN users u ON u.id = l.owner_id WHERE l.id = \$1`).
			WithArgs("lst-1").
			WillReturnRows(rows)

		l, err := repo.Get(ctx, "lst-1")
		require.NoError(t, err)
		assert.Equal(t, "lst-1", l.ID)
		assert.Equal(t, "usr-1", l.Owner.ID)
		assert.Equal(t, "Cairo", l.Owner.City)
		assert.Equal(t, []string{"S", "M"}, l.Sizes)
		assert.False(t, l.Width.Valid)
		assert.True(t, decimal.NewFromInt(1500).Equal(l.Price))
		assert.Equal(t, StatusForSale, l.Status)
		assert.Equal(t, TypeStock, l.Type())
		assert.True(t, l.Balanced())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM listings").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(listingColumns))

		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM listings").
			WillReturnError(errors.New("db down"))

		_, err := repo.Get(ctx, "lst-1")
		assert.ErrorContains(t, err, "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM listings l .* WHERE l.id = \$1 FOR UPDATE OF l`).
		WithArgs("lst-1").
		WillReturnRows(sqlmock.NewRows(listingColumns).AddRow(
			"lst-1", "usr-1", "", "", "", "", "",
			"Vase", "", "pottery", nil,
			"3D", "10", "20", "5",
			"300", 1, 1, 0,
			"Pending", now, now,
		))

	l, err := repo.GetForUpdate(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, Dimensions3D, l.Dimensions)
	assert.True(t, l.Depth.Valid)
	assert.Equal(t, TypeUnique, l.Type())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	l := &Listing{
		ID: "lst-1", OwnerID: "usr-1", Name: "Vase", ItemType: "pottery",
		Price: decimal.NewFromInt(300), InitialQuantity: 2, CurrentQuantity: 2,
		Status: StatusPending,
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("INSERT INTO listings").
			WithArgs("lst-1", "usr-1", "Vase", "", "pottery", sqlmock.AnyArg(),
				"", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), 2, 2, 0, "Pending").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, repo.Create(context.Background(), l))
		assert.Equal(t, now, l.CreatedAt)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO listings").WillReturnError(errors.New("duplicate"))

		assert.ErrorContains(t, repo.Create(context.Background(), l), "insert listing")
	})
}

func TestRepository_MoveQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	stockCols := []string{"current_quantity", "sold_quantity"}

	t.Run("Reserve", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE listings SET current_quantity = current_quantity - \$2, sold_quantity = sold_quantity \+ \$2, .* WHERE id = \$1 AND current_quantity >= \$2 AND sold_quantity >= -\$2 RETURNING`).
			WithArgs("lst-1", 2).
			WillReturnRows(sqlmock.NewRows(stockCols).AddRow(3, 2))

		s, err := repo.MoveQuantity(ctx, "lst-1", 2)
		require.NoError(t, err)
		assert.Equal(t, Stock{CurrentQuantity: 3, SoldQuantity: 2}, s)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		mock.ExpectQuery("UPDATE listings").
			WithArgs("lst-1", 10).
			WillReturnRows(sqlmock.NewRows(stockCols))
		mock.ExpectQuery(`SELECT current_quantity, sold_quantity FROM listings WHERE id = \$1`).
			WithArgs("lst-1").
			WillReturnRows(sqlmock.NewRows(stockCols).AddRow(1, 4))

		s, err := repo.MoveQuantity(ctx, "lst-1", 10)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		var stockErr *StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 1, stockErr.Available)
		assert.Equal(t, 1, s.CurrentQuantity)
	})

	t.Run("OverRelease", func(t *testing.T) {
		mock.ExpectQuery("UPDATE listings").
			WithArgs("lst-1", -5).
			WillReturnRows(sqlmock.NewRows(stockCols))
		mock.ExpectQuery("SELECT current_quantity, sold_quantity FROM listings").
			WithArgs("lst-1").
			WillReturnRows(sqlmock.NewRows(stockCols).AddRow(4, 1))

		_, err := repo.MoveQuantity(ctx, "lst-1", -5)
		assert.ErrorIs(t, err, ErrOverRelease)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("UPDATE listings").
			WithArgs("missing", 1).
			WillReturnRows(sqlmock.NewRows(stockCols))
		mock.ExpectQuery("SELECT current_quantity, sold_quantity FROM listings").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(stockCols))

		_, err := repo.MoveQuantity(ctx, "missing", 1)
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("UPDATE listings").WillReturnError(errors.New("deadlock"))

		_, err := repo.MoveQuantity(ctx, "lst-1", 1)
		assert.ErrorContains(t, err, "deadlock")
		assert.NotErrorIs(t, err, ErrInsufficientStock)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE listings SET status = \$1`).
			WithArgs("Confirmed", "lst-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(ctx, "lst-1", StatusConfirmed))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE listings SET status").
			WithArgs("Sold", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", StatusSold), ErrListingNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
