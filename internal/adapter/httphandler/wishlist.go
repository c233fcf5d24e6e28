package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

// GET    /api/wishlist
// POST   /api/wishlist
// DELETE /api/wishlist/{productId}

type WishlistHandler struct {
	wishlist port.Wishlist
}

func RegisterWishlist(mux *http.ServeMux, g Guard, wishlist port.Wishlist) {
	h := WishlistHandler{wishlist}
	mux.Handle("GET /api/wishlist", g.Required(h.GetWishlist))
	mux.Handle("POST /api/wishlist", g.Required(h.PostItem))
	mux.Handle("DELETE /api/wishlist/{productId}", g.Required(h.DeleteItem))
}

func (h WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.GetWishlist"
	log := slog.With("op", op)

	ls, err := h.wishlist.List(r.Context(), principalFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, wishlistFromDomain(ls))
}

func (h WishlistHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.PostItem"
	log := slog.With("op", op)

	var body AddWishlistBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	e, err := h.wishlist.Add(r.Context(), principalFrom(r.Context()).UserID, body.ProductID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, wishlistItemFromDomain(e))
}

func (h WishlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.DeleteItem"
	log := slog.With("op", op)

	err := h.wishlist.Remove(
		r.Context(), principalFrom(r.Context()).UserID, r.PathValue("productId"),
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
