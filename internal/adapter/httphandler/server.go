package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
)

// Services bundles the inbound ports served over HTTP.
type Services struct {
	Accounts port.Accounts
	Catalog  port.Catalog
	Reviews  port.Reviews
	Cart     port.Cart
	Orders   port.Orders
	Wishlist port.Wishlist
}

// NewRouter registers every API route on a fresh mux and wraps it with the
// request logging and media type middleware.
func NewRouter(s Services) http.Handler {
	mux := http.NewServeMux()
	g := NewGuard(s.Accounts)

	RegisterAuth(mux, s.Accounts)
	RegisterProducts(mux, g, s.Catalog, s.Reviews)
	RegisterCart(mux, g, s.Cart)
	RegisterOrders(mux, g, s.Orders)
	RegisterWishlist(mux, g, s.Wishlist)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return LogRequests(AllowJSON(mux))
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) HTTPServer {
	handler = http.TimeoutHandler(handler, 5*time.Second, `{"message":"unavailable"}`)
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected server shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
