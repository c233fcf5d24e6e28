package httphandler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// AllowJSON rejects request bodies that are not declared as JSON.
func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			log := slog.With("op", "AllowJSON")
			writeJSON(w, log, http.StatusUnsupportedMediaType, errorBody{"invalid media type"})
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LogRequests(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	}
	return http.HandlerFunc(hf)
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// principalFrom returns the caller identity, the zero Principal for
// anonymous requests.
func principalFrom(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}

// Guard resolves bearer tokens to principals.
type Guard struct {
	auth port.Authenticator
}

func NewGuard(auth port.Authenticator) Guard {
	return Guard{auth}
}

// Required answers 401 without a token and 403 for a token that does
// not verify.
func (g Guard) Required(next http.HandlerFunc) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		const op = "Guard.Required"
		log := slog.With("op", op)

		p, err := g.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, log, err)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), p)))
	}
	return http.HandlerFunc(hf)
}

// Admin is Required followed by 403 for non-admins, so that nothing of
// the request is looked at before the caller is known to be allowed.
func (g Guard) Admin(next http.HandlerFunc) http.Handler {
	return g.Required(func(w http.ResponseWriter, r *http.Request) {
		const op = "Guard.Admin"

		if !principalFrom(r.Context()).IsAdmin {
			writeError(w, slog.With("op", op), domain.ErrForbidden)
			return
		}
		next(w, r)
	})
}

// Optional lets anonymous requests through. A token that is present must
// still verify.
func (g Guard) Optional(next http.HandlerFunc) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		const op = "Guard.Optional"
		log := slog.With("op", op)

		if r.Header.Get("Authorization") == "" {
			next(w, r)
			return
		}
		p, err := g.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, log, err)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), p)))
	}
	return http.HandlerFunc(hf)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
