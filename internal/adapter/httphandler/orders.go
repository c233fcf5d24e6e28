package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET /api/checkout/quote
// POST /api/orders
// GET /api/orders
// GET /api/orders/{id}
// PUT /api/orders/{id}/status   admin
// PUT /api/orders/{id}/payment  admin

type OrdersHandler struct {
	orders port.Orders
}

func RegisterOrders(mux *http.ServeMux, g Guard, orders port.Orders) {
	h := OrdersHandler{orders}
	mux.Handle("GET /api/checkout/quote", g.Required(h.GetQuote))
	mux.Handle("POST /api/orders", g.Required(h.PostOrder))
	mux.Handle("GET /api/orders", g.Required(h.GetOrders))
	mux.Handle("GET /api/orders/{id}", g.Required(h.GetOrder))
	mux.Handle("PUT /api/orders/{id}/status", g.Admin(h.PutStatus))
	mux.Handle("PUT /api/orders/{id}/payment", g.Admin(h.PutPaymentStatus))
}

func (h OrdersHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetQuote"
	log := slog.With("op", op)

	q, err := h.orders.Quote(r.Context(), principalFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, quoteFromDomain(q))
}

func (h OrdersHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostOrder"
	log := slog.With("op", op)

	var body CreateOrderBody
	if !decodeJSON(w, r, log, &body) {
		return
	}
	method, err := domain.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		writeError(w, log, err)
		return
	}

	d, err := h.orders.CreateOrder(
		r.Context(),
		principalFrom(r.Context()).UserID,
		domain.ShippingAddress(body.ShippingAddress),
		method,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("order placed", "orderID", d.Order.ID, "total", d.Order.TotalAmount)
	writeJSON(w, log, http.StatusCreated, orderDetailsFromDomain(d))
}

func (h OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetOrders"
	log := slog.With("op", op)

	os, err := h.orders.List(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, ordersFromDomain(os))
}

func (h OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetOrder"
	log := slog.With("op", op)

	d, err := h.orders.Get(r.Context(), principalFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, orderDetailsFromDomain(d))
}

func (h OrdersHandler) PutStatus(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PutStatus"
	log := slog.With("op", op)

	var body StatusBody
	if !decodeJSON(w, r, log, &body) {
		return
	}
	status, err := domain.ParseOrderStatus(body.Status)
	if err != nil {
		writeError(w, log, err)
		return
	}

	o, err := h.orders.UpdateStatus(
		r.Context(), principalFrom(r.Context()), r.PathValue("id"), status,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, orderFromDomain(o))
}

func (h OrdersHandler) PutPaymentStatus(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PutPaymentStatus"
	log := slog.With("op", op)

	var body PaymentStatusBody
	if !decodeJSON(w, r, log, &body) {
		return
	}
	status, err := domain.ParsePaymentStatus(body.PaymentStatus)
	if err != nil {
		writeError(w, log, err)
		return
	}

	o, err := h.orders.UpdatePaymentStatus(
		r.Context(), principalFrom(r.Context()), r.PathValue("id"), status,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, orderFromDomain(o))
}
