package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/filter"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

// GET    /api/products?category=&pattern=&material=&colors=&sizes=&minPrice=&maxPrice=&priceRange=&search=&sort=
// GET    /api/products/{id}
// POST   /api/products          admin
// PUT    /api/products/{id}     admin
// DELETE /api/products/{id}     admin
// GET    /api/products/{id}/reviews
// POST   /api/products/{id}/reviews

type ProductsHandler struct {
	catalog port.Catalog
	reviews port.Reviews
}

func RegisterProducts(
	mux *http.ServeMux, g Guard, catalog port.Catalog, reviews port.Reviews,
) {
	h := ProductsHandler{catalog, reviews}
	mux.Handle("GET /api/products", g.Optional(h.GetProducts))
	mux.Handle("GET /api/products/{id}", g.Optional(h.GetProduct))
	mux.Handle("POST /api/products", g.Admin(h.PostProduct))
	mux.Handle("PUT /api/products/{id}", g.Admin(h.PutProduct))
	mux.Handle("DELETE /api/products/{id}", g.Admin(h.DeleteProduct))
	mux.Handle("GET /api/products/{id}/reviews", http.HandlerFunc(h.GetReviews))
	mux.Handle("POST /api/products/{id}/reviews", g.Required(h.PostReview))
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, log, err)
		return
	}

	ps, err := h.catalog.List(r.Context(), principalFrom(r.Context()), c)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, productsFromDomain(ps))
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.catalog.Get(r.Context(), principalFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, productFromDomain(p))
}

func (h ProductsHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostProduct"
	log := slog.With("op", op)

	var body ProductBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	p, err := h.catalog.Create(r.Context(), principalFrom(r.Context()), body.draft())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("product created", "productID", p.ID)
	writeJSON(w, log, http.StatusCreated, productFromDomain(p))
}

func (h ProductsHandler) PutProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PutProduct"
	log := slog.With("op", op)

	var body ProductBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	p, err := h.catalog.Update(
		r.Context(), principalFrom(r.Context()), r.PathValue("id"), body.patch(),
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, productFromDomain(p))
}

func (h ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.DeleteProduct"
	log := slog.With("op", op)

	id := r.PathValue("id")
	if err := h.catalog.Delete(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("product deactivated", "productID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h ProductsHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetReviews"
	log := slog.With("op", op)

	rs, err := h.reviews.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, reviewsFromDomain(rs))
}

func (h ProductsHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostReview"
	log := slog.With("op", op)

	var body ReviewBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	rv, err := h.reviews.Create(
		r.Context(),
		principalFrom(r.Context()).UserID,
		r.PathValue("id"),
		body.Rating,
		body.Comment,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, Review(rv))
}

// parseCriteria reads the listing query. Multi-valued parameters are comma
// separated; priceRange is "min-max" and is overridden by explicit
// minPrice and maxPrice.
func parseCriteria(q url.Values) (filter.Criteria, error) {
	var errs []error
	c := filter.Criteria{
		Categories: splitList(q.Get("category")),
		Patterns:   splitList(q.Get("pattern")),
		Materials:  splitList(q.Get("material")),
		Colors:     splitList(q.Get("colors")),
		Sizes:      splitList(q.Get("sizes")),
		Search:     strings.TrimSpace(q.Get("search")),
	}

	if pr := strings.TrimSpace(q.Get("priceRange")); pr != "" {
		lo, hi, ok := strings.Cut(pr, "-")
		if !ok {
			errs = append(errs, domain.ValidationError("priceRange must look like \"min-max\""))
		} else {
			c.MinPrice = parsePrice(&errs, "priceRange", lo)
			c.MaxPrice = parsePrice(&errs, "priceRange", hi)
		}
	}
	if v := q.Get("minPrice"); v != "" {
		c.MinPrice = parsePrice(&errs, "minPrice", v)
	}
	if v := q.Get("maxPrice"); v != "" {
		c.MaxPrice = parsePrice(&errs, "maxPrice", v)
	}

	sort, err := filter.ParseSort(q.Get("sort"))
	if err != nil {
		errs = append(errs, err)
	}
	c.Sort = sort

	return c, errors.Join(errs...)
}

func parsePrice(errs *[]error, name, v string) decimal.NullDecimal {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		*errs = append(*errs, domain.ValidationError(name+" must be a non-negative number"))
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func splitList(v string) []string {
	var out []string
	for s := range strings.SplitSeq(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
