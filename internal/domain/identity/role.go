// Package identity holds the actor model shared by the API surface. Users
// come from the chat platform; keypool never stores credentials, only the
// role a signed token carries.
package identity

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	// RoleRequester can open tickets and join waitlists.
	RoleRequester Role = "requester"
	// RoleSupplier can stock items and claim tickets.
	RoleSupplier Role = "supplier"
	// RoleManager can verify evidence, manage the panel and mint tokens.
	RoleManager Role = "manager"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleRequester, RoleSupplier, RoleManager:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

func (r Role) String() string {
	return string(r)
}
