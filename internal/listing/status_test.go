package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Pending", "For Sale", "Confirmed", "Cancelled", "Sold", "SFS"} {
		st, err := ParseStatus(s)
		assert.NoError(t, err, s)
		assert.Equal(t, Status(s), st)
	}

	_, err := ParseStatus("for sale")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusForSale, true},
		{StatusForSale, StatusConfirmed, true},
		{StatusConfirmed, StatusSold, true},
		{StatusConfirmed, StatusForSale, true},
		{StatusSold, StatusForSale, true},
		{StatusLegacySFS, StatusConfirmed, true},
		{StatusPending, StatusSold, false},
		{StatusForSale, StatusSold, false},
		{StatusCancelled, StatusForSale, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestListing_TypeAndBalance(t *testing.T) {
	unique := &Listing{InitialQuantity: 1, CurrentQuantity: 1}
	stock := &Listing{InitialQuantity: 5, CurrentQuantity: 3, SoldQuantity: 2}
	broken := &Listing{InitialQuantity: 5, CurrentQuantity: 4, SoldQuantity: 2}

	assert.Equal(t, TypeUnique, unique.Type())
	assert.Equal(t, TypeStock, stock.Type())
	assert.True(t, unique.Balanced())
	assert.True(t, stock.Balanced())
	assert.False(t, broken.Balanced())
	assert.Equal(t, Stock{CurrentQuantity: 3, SoldQuantity: 2}, stock.Stock())

	assert.True(t, StatusLegacySFS.IsForSale())
	assert.False(t, StatusConfirmed.IsForSale())
	assert.True(t, (&Listing{ItemType: "Clothing"}).IsClothing())
}

func TestStockError(t *testing.T) {
	err := &StockError{ListingID: "lst-1", Requested: 10, Available: 1}

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "only 1 left")
}
