// Package api exposes the order core over HTTP+JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/metrics"
	"cadre-be/internal/middleware"
	"cadre-be/internal/order"
	"cadre-be/internal/problem"
	"cadre-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

type Deps struct {
	Orders    order.Service
	Listings  listing.Service
	JWTSecret []byte

	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.RateLimiter

	// Ping reports storage health for /health. Optional.
	Ping func(ctx context.Context) error
}

type handler struct {
	orders   order.Service
	listings listing.Service
	ping     func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	h := &handler{orders: d.Orders, listings: d.Listings, ping: d.Ping}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	// Authenticate wraps the access log so request lines carry the caller.
	r.Use(middleware.Authenticate(d.JWTSecret))
	r.Use(logger.LoggingMiddleware)
	r.Use(recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, problem.NotFound.WithDetail("no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, problem.Detail{
			Type:   problem.TypeBadRequest,
			Title:  "Method Not Allowed",
			Status: http.StatusMethodNotAllowed,
			Code:   "MethodNotAllowed",
		})
	})

	r.Get("/health", h.health)

	r.Post("/create-order", h.createOrder)
	r.Get("/listings/{id}", h.getListing)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/listings", h.createListing)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(utils.RoleAdmin, utils.RoleStaff))
		r.Get("/orders", h.listOrders)
		r.Get("/order/{id}", h.getOrder)
		r.Put("/order/{id}/status", h.setStatus)
		r.Delete("/order/{id}/items/{itemId}", h.deleteOrderItem)
		r.Put("/order/{id}/items/{itemId}/quantity", h.updateItemQuantity)
		r.Put("/order/{id}/items/{itemId}/status-checks", h.updateItemStatusChecks)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(utils.RoleAdmin))
		r.Delete("/order/{id}", h.deleteOrder)
		r.Put("/listings/{id}/approve", h.approveListing)
	})

	return r
}

// recoverer turns a handler panic into a logged 500 problem.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.FromCtx(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				problem.Write(w, r, problem.Internal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status   string            `json:"status"`
	Counters map[string]uint64 `json:"counters"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			logger.FromCtx(r.Context()).Warn("health check failed", zap.Error(err))
			problem.Write(w, r, problem.Detail{
				Type:   problem.TypeInternal,
				Title:  "Service Unavailable",
				Status: http.StatusServiceUnavailable,
				Code:   "Unavailable",
			})
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Counters: metrics.Snapshot()})
}
