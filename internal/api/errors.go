package api

import (
	"errors"
	"net/http"

	"cadre-be/internal/inventory"
	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/order"
	"cadre-be/internal/problem"

	"go.uber.org/zap"
)

// problemFor maps domain errors to their HTTP problem. Anything it does not
// recognise is an internal error and its message is not exposed.
func problemFor(err error) problem.Detail {
	var stockErr *listing.StockError

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, listing.ErrListingNotFound):
		return problem.NotFound.WithDetail(err.Error())

	case errors.As(err, &stockErr):
		return problem.Validation.
			WithCode("InsufficientStock").
			WithDetail(stockErr.Error()).
			WithExtension("listingId", stockErr.ListingID).
			WithExtension("requested", stockErr.Requested).
			WithExtension("available", stockErr.Available)

	case errors.Is(err, listing.ErrInsufficientStock):
		return problem.Validation.WithCode("InsufficientStock").WithDetail(err.Error())

	case errors.Is(err, order.ErrEmptyOrder):
		return problem.Validation.WithCode("EmptyOrder").WithDetail(err.Error())

	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidQuantity):
		return problem.Validation.WithCode("InvalidQuantity").WithDetail(err.Error())

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, listing.ErrInvalidTransition):
		return problem.Validation.WithCode("InvalidTransition").WithDetail(err.Error())

	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, listing.ErrInvalidStatus):
		return problem.Validation.WithCode("InvalidStatus").WithDetail(err.Error())

	case errors.Is(err, order.ErrInvalidField):
		return problem.Validation.WithCode("InvalidField").WithDetail(err.Error())

	case errors.Is(err, listing.ErrInvalidListing):
		return problem.Validation.WithCode("InvalidListing").WithDetail(err.Error())

	case errors.Is(err, order.ErrOrderClosed):
		return problem.Validation.WithCode("OrderClosed").WithDetail(err.Error())
	case errors.Is(err, order.ErrRequestInProgress):
		return problem.Conflict.WithCode("RequestInProgress").WithDetail(err.Error())
	}

	return problem.Internal
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	if p.Status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
	}
	problem.Write(w, r, p)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	problem.Write(w, r, problem.BadRequest.WithDetail(detail))
}
