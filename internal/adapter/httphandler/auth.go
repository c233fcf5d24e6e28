package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

// POST /api/auth/register
// POST /api/auth/login

type AuthHandler struct {
	accounts port.Accounts
}

func RegisterAuth(mux *http.ServeMux, accounts port.Accounts) {
	h := AuthHandler{accounts}
	mux.HandleFunc("POST /api/auth/register", h.PostRegister)
	mux.HandleFunc("POST /api/auth/login", h.PostLogin)
}

func (h AuthHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.PostRegister"
	log := slog.With("op", op)

	var body RegisterBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	s, err := h.accounts.Register(r.Context(), body.registration())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("user registered", "userID", s.User.ID)
	writeJSON(w, log, http.StatusCreated, sessionFromDomain(s))
}

func (h AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.PostLogin"
	log := slog.With("op", op)

	var body LoginBody
	if !decodeJSON(w, r, log, &body) {
		return
	}

	s, err := h.accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, sessionFromDomain(s))
}
