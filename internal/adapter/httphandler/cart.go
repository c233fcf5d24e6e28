package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET    /api/cart
// POST   /api/cart
// PUT    /api/cart/{id}
// DELETE /api/cart/{id}
// DELETE /api/cart

type CartHandler struct {
	cart port.Cart
}

func RegisterCart(mux *http.ServeMux, g Guard, cart port.Cart) {
	h := CartHandler{cart}
	mux.Handle("GET /api/cart", g.Required(h.GetCart))
	mux.Handle("POST /api/cart", g.Required(h.PostItem))
	mux.Handle("PUT /api/cart/{id}", g.Required(h.PutItem))
	mux.Handle("DELETE /api/cart/{id}", g.Required(h.DeleteItem))
	mux.Handle("DELETE /api/cart", g.Required(h.DeleteCart))
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	log := slog.With("op", op)

	s, err := h.cart.Summary(r.Context(), principalFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, cartSummaryFromDomain(s))
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var body AddCartItemBody
	if !decodeJSON(w, r, log, &body) {
		return
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}

	item, err := h.cart.AddItem(
		r.Context(),
		principalFrom(r.Context()).UserID,
		body.ProductID,
		body.VariantID,
		qty,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, cartItemFromDomain(item))
}

func (h CartHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PutItem"
	log := slog.With("op", op)

	var body QuantityBody
	if !decodeJSON(w, r, log, &body) {
		return
	}
	if body.Quantity == nil {
		writeError(w, log, domain.ValidationError("quantity is required"))
		return
	}

	item, err := h.cart.UpdateQuantity(
		r.Context(), principalFrom(r.Context()).UserID, r.PathValue("id"), *body.Quantity,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, cartItemFromDomain(item))
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	err := h.cart.RemoveItem(r.Context(), principalFrom(r.Context()).UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteCart"
	log := slog.With("op", op)

	if err := h.cart.Clear(r.Context(), principalFrom(r.Context()).UserID); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
