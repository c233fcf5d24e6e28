package domain

import (
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	IsAdmin      bool
	CreatedAt    time.Time
}

func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Principal is the identity derived from a validated credential.
// The zero value is an anonymous caller.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// CanAccess reports whether p may read a resource owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin || (p.Authenticated() && p.UserID == ownerID)
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type Session struct {
	User  User
	Token string
}
