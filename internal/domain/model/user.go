package model

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin is derived from the role string. It is never stored on its own,
// so the role stays the single source of truth.
func (u *User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// MarshalJSON adds a read-only "admin" field to the wire representation.
// Inbound payloads carrying "admin" are ignored on unmarshal since the
// struct has no matching field.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Admin bool `json:"admin"`
	}{
		alias: alias(u),
		Admin: u.IsAdmin(),
	})
}
