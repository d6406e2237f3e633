package listing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinPrice is the lowest accepted listing price, in currency units.
var MinPrice = decimal.NewFromInt(100)

// PriceScale is the number of decimal places money is stored with.
const PriceScale = 2

// Type is derived from the initial quantity: one-off pieces are unique,
// everything else is stock-tracked.
type Type string

const (
	TypeUnique Type = "unique"
	TypeStock  Type = "stock"
)

type Dimensions string

const (
	Dimensions2D Dimensions = "2D"
	Dimensions3D Dimensions = "3D"
)

const itemTypeClothing = "clothing"

// Seller is the owner contact data copied into order snapshots.
type Seller struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type Listing struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"ownerId"`
	Owner       Seller   `json:"owner"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ItemType    string   `json:"itemType"`
	Sizes       []string `json:"sizes,omitempty"`

	Dimensions Dimensions          `json:"dimensions,omitempty"`
	Width      decimal.NullDecimal `json:"width"`
	Height     decimal.NullDecimal `json:"height"`
	Depth      decimal.NullDecimal `json:"depth"`

	Price           decimal.Decimal `json:"price"`
	InitialQuantity int             `json:"initialQuantity"`
	CurrentQuantity int             `json:"currentQuantity"`
	SoldQuantity    int             `json:"soldQuantity"`
	Status          Status          `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *Listing) Type() Type {
	if l.InitialQuantity == 1 {
		return TypeUnique
	}
	return TypeStock
}

func (l *Listing) IsClothing() bool {
	return strings.EqualFold(l.ItemType, itemTypeClothing)
}

func (l *Listing) Stock() Stock {
	return Stock{CurrentQuantity: l.CurrentQuantity, SoldQuantity: l.SoldQuantity}
}

// Balanced reports whether the available and sold buckets add up to the
// initial quantity.
func (l *Listing) Balanced() bool {
	return l.CurrentQuantity >= 0 &&
		l.SoldQuantity >= 0 &&
		l.CurrentQuantity+l.SoldQuantity == l.InitialQuantity
}

// Stock is the pair of quantity counters a ledger move reports back.
type Stock struct {
	CurrentQuantity int `json:"currentQuantity"`
	SoldQuantity    int `json:"soldQuantity"`
}

type CreateListingInput struct {
	OwnerID     string
	Name        string
	Description string
	ItemType    string
	Sizes       []string
	Dimensions  Dimensions
	Width       decimal.NullDecimal
	Height      decimal.NullDecimal
	Depth       decimal.NullDecimal
	Price       decimal.Decimal
	Quantity    int
}
