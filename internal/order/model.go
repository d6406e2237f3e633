package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerInfo struct {
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// SellerInfo is copied from the listing owner when the order is placed and
// never re-read afterwards.
type SellerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type OrderItem struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`

	// Snapshot of the listing at order time.
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	SellerInfo  SellerInfo      `json:"sellerInfo"`

	// Clothing carries a size, everything else its measurements.
	SelectedSize string              `json:"selectedSize,omitempty"`
	Dimensions   string              `json:"dimensions,omitempty"`
	Width        decimal.NullDecimal `json:"width"`
	Height       decimal.NullDecimal `json:"height"`
	Depth        decimal.NullDecimal `json:"depth"`

	Quantity     int             `json:"quantity"`
	Profit       decimal.Decimal `json:"profit"`
	StatusChecks StatusChecks    `json:"statusChecks"`
}

type Order struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	Items        []*OrderItem    `json:"orderItems"`
	Customer     CustomerInfo    `json:"customerInfo"`
	ShipmentFees decimal.Decimal `json:"shipmentFees"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	CadreProfit  decimal.Decimal `json:"cadreProfit"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// FindItem returns the item and its position, or -1 when absent.
func (o *Order) FindItem(itemID string) (*OrderItem, int) {
	for i, item := range o.Items {
		if item.ID == itemID {
			return item, i
		}
	}
	return nil, -1
}

func (o *Order) removeItemAt(i int) {
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
}

type OrderLine struct {
	ListingID    string
	Quantity     int
	SelectedSize string
}

type CreateOrderInput struct {
	Lines    []OrderLine
	Customer CustomerInfo

	// IdempotencyKey makes a retried submission return the first order.
	IdempotencyKey string
}

type ListFilter struct {
	// CustomerUserID restricts the list to one customer's orders.
	CustomerUserID string
	Status         *Status
	Search         string
	Limit          int
	Page           int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalize applies paging defaults and bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// SkippedItem is an item whose listing side effect could not be applied
// during a status change.
type SkippedItem struct {
	ItemID    string `json:"itemId"`
	ListingID string `json:"listingId"`
	Reason    string `json:"reason"`
}

type StatusChangeResult struct {
	Order        *Order        `json:"order"`
	SkippedItems []SkippedItem `json:"skippedItems"`
}

type DeleteItemResult struct {
	OrderDeleted bool   `json:"orderDeleted"`
	Order        *Order `json:"order,omitempty"`
}

type ListingStock struct {
	CurrentQuantity int `json:"currentQuantity"`
	SoldQuantity    int `json:"soldQuantity"`
}

type QuantityChangeResult struct {
	Order        *Order       `json:"order"`
	ListingStock ListingStock `json:"listingStock"`
}
