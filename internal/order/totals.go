package order

import (
	"cadre-be/internal/listing"

	"github.com/shopspring/decimal"
)

var (
	// SellerShare is the seller's cut of each line.
	SellerShare = decimal.RequireFromString("0.9")
	// CadreShare is the platform's cut of the pre-shipping subtotal.
	CadreShare = decimal.RequireFromString("0.1")
)

func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// ItemProfit is the seller's share of a line, rounded half-even to the cent
// so it survives the NUMERIC(14,2) column unchanged.
func ItemProfit(price decimal.Decimal, qty int) decimal.Decimal {
	return LineTotal(price, qty).Mul(SellerShare).RoundBank(listing.PriceScale)
}

func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(LineTotal(item.Price, item.Quantity))
	}
	return sum
}

// RecalculateTotals derives totalPrice and cadreProfit from the current items.
func (o *Order) RecalculateTotals() {
	subtotal := o.Subtotal()
	o.TotalPrice = subtotal.Add(o.ShipmentFees)
	o.CadreProfit = subtotal.Mul(CadreShare).RoundBank(listing.PriceScale)
}
