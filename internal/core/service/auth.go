package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/crypto/bcrypt"
)

var _ port.Accounts = (*Auth)(nil)

const minPasswordLen = 6

// RequireAdmin fails unless p is an authenticated admin.
func RequireAdmin(p domain.Principal) error {
	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !p.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

type Auth struct {
	users  port.Repository[domain.User]
	tokens port.TokenIssuer
	cost   int

	// serializes uniqueness checks of registrations
	mu sync.Mutex
}

// NewAuth returns accounts backed by users. Passwords are hashed with the
// given bcrypt cost; cost 0 means [bcrypt.DefaultCost].
func NewAuth(
	users port.Repository[domain.User], tokens port.TokenIssuer, cost int,
) *Auth {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Auth{users: users, tokens: tokens, cost: cost}
}

// Authenticate resolves a bearer token to its principal.
func (s *Auth) Authenticate(
	ctx context.Context, credential string,
) (domain.Principal, error) {
	const op = "Auth.Authenticate"

	if strings.TrimSpace(credential) == "" {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	p, err := s.tokens.Verify(credential)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Auth) Register(
	ctx context.Context, r domain.Registration,
) (domain.Session, error) {
	const op = "Auth.Register"

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	if err := validateRegistration(r); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, u := range users {
		if u.Email == r.Email || strings.EqualFold(u.Username, r.Username) {
			return domain.Session{}, fmt.Errorf(
				"%s: %w", op, domain.ValidationError("user already exists"),
			)
		}
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Phone:        strings.TrimSpace(r.Phone),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Put(ctx, u.ID, u); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.session(op, u)
}

func (s *Auth) Login(
	ctx context.Context, email, password string,
) (domain.Session, error) {
	const op = "Auth.Login"

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return domain.Session{}, fmt.Errorf("%s: invalid credentials: %w", op, domain.ErrUnauthenticated)
		}
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: invalid credentials: %w", op, domain.ErrUnauthenticated)
	}

	return s.session(op, u)
}

// EnsureAdmin makes sure an admin account with email exists. An existing
// account is promoted, its password is left as is.
func (s *Auth) EnsureAdmin(ctx context.Context, email, password string) error {
	const op = "Auth.EnsureAdmin"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.findByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsAdmin {
			return nil
		}
		u.IsAdmin = true
		if err := s.users.Put(ctx, u.ID, u); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("user promoted to admin", "email", u.Email)
		return nil
	case !isNotFound(err):
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(password) < minPasswordLen {
		return fmt.Errorf("%s: %w", op, domain.ValidationError("admin password is too short"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	u = domain.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		FirstName:    "Admin",
		IsAdmin:      true,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Put(ctx, u.ID, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("admin account created", "email", u.Email)
	return nil
}

func (s *Auth) findByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := s.users.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Auth) session(op string, u domain.User) (domain.Session, error) {
	token, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Session{User: u, Token: token}, nil
}

func validateRegistration(r domain.Registration) error {
	var errs []error
	if r.Username == "" {
		errs = append(errs, domain.ValidationError("username is required"))
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, domain.ValidationError("email is invalid"))
	}
	if len(r.Password) < minPasswordLen {
		errs = append(errs, domain.ValidationError("password must be at least 6 characters"))
	}
	return errors.Join(errs...)
}
