package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"cadre-be/internal/order"
	"cadre-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const IdempotencyKeyHeader = "Idempotency-Key"

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}

	// Guests may order; a signed-in caller is recorded as the customer.
	userID, _ := utils.GetUserIDFromContext(r.Context())
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	o, err := h.orders.CreateOrder(r.Context(), req.toInput(userID, key))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, createOrderResponse{OrderID: o.ID, Status: o.Status, Order: o})
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := order.ListFilter{
		CustomerUserID: q.Get("customerId"),
		Search:         strings.TrimSpace(q.Get("search")),
		Limit:          utils.QueryInt(r, "limit", 0),
		Page:           utils.QueryInt(r, "page", 0),
	}
	if raw := q.Get("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = &st
	}
	filter = filter.Normalize()

	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, listOrdersResponse{Orders: orders, Page: filter.Page, Limit: filter.Limit})
}

func (h *handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.DeleteItemResult{OrderDeleted: true})
}

func (h *handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}

	res, err := h.orders.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) deleteOrderItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.orders.DeleteOrderItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) updateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}

	res, err := h.orders.UpdateOrderItemQuantity(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.NewQuantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) updateItemStatusChecks(w http.ResponseWriter, r *http.Request) {
	var req updateChecksRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}

	checks, err := h.orders.UpdateItemStatusChecks(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.StatusChecks)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, checks)
}
