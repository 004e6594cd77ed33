package identity

import "time"

// User represents a registered wallet owner.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	TokenVersion int
	Active       bool
	CreatedAt    time.Time
}

// Credentials is the request structure for registration and login.
type Credentials struct {
	Name     string
	Email    string
	Password string
}
