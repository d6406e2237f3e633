package api

import (
	"cadre-be/internal/listing"
	"cadre-be/internal/order"

	"github.com/shopspring/decimal"
)

type orderLineRequest struct {
	ListingID    string `json:"listingId"`
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selectedSize"`
}

type createOrderRequest struct {
	OrderItems   []orderLineRequest `json:"orderItems"`
	CustomerInfo order.CustomerInfo `json:"customerInfo"`
}

type createOrderResponse struct {
	OrderID string       `json:"orderId"`
	Status  order.Status `json:"status"`
	Order   *order.Order `json:"order"`
}

type listOrdersResponse struct {
	Orders []*order.Order `json:"orders"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type updateQuantityRequest struct {
	NewQuantity int `json:"newQuantity"`
}

type updateChecksRequest struct {
	StatusChecks map[string]bool `json:"statusChecks"`
}

type createListingRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ItemType    string              `json:"itemType"`
	Sizes       []string            `json:"sizes"`
	Dimensions  listing.Dimensions  `json:"dimensions"`
	Width       decimal.NullDecimal `json:"width"`
	Height      decimal.NullDecimal `json:"height"`
	Depth       decimal.NullDecimal `json:"depth"`
	Price       decimal.Decimal     `json:"price"`
	Quantity    int                 `json:"quantity"`
}

func (req createOrderRequest) toInput(userID, idempotencyKey string) order.CreateOrderInput {
	lines := make([]order.OrderLine, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		lines = append(lines, order.OrderLine{
			ListingID:    it.ListingID,
			Quantity:     it.Quantity,
			SelectedSize: it.SelectedSize,
		})
	}

	customer := req.CustomerInfo
	customer.UserID = userID

	return order.CreateOrderInput{
		Lines:          lines,
		Customer:       customer,
		IdempotencyKey: idempotencyKey,
	}
}

func (req createListingRequest) toInput(ownerID string) listing.CreateListingInput {
	return listing.CreateListingInput{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		ItemType:    req.ItemType,
		Sizes:       req.Sizes,
		Dimensions:  req.Dimensions,
		Width:       req.Width,
		Height:      req.Height,
		Depth:       req.Depth,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}
