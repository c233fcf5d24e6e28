// Package httphandler exposes the storefront over a JSON REST API.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/core/domain"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorBody struct {
	Message string `json:"message"`
}

// decodeJSON reads the request body into v. On failure it answers 400 and
// reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, log, http.StatusBadRequest, errorBody{"invalid JSON data"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeError maps err to a status code. Unknown errors are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, log, status, errorBody{msg})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		reasons := domain.ValidationReasons(err)
		if len(reasons) == 0 {
			return http.StatusBadRequest, domain.ErrValidation.Error()
		}
		return http.StatusBadRequest, strings.Join(reasons, "; ")
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, domain.ErrEmptyCart.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusForbidden, domain.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	}
	return http.StatusInternalServerError, "internal error"
}
