package policy

import (
	"net/http"

	"github.com/google/uuid"
)

// Roles known to the capability matrix.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

// Actions a request method maps onto.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionWrite  = "write"
)

// Principal is the caller a request acts on behalf of.
type Principal struct {
	ID            uuid.UUID
	Username      string
	IsStaff       bool
	IsSuperuser   bool
	Authenticated bool
}

// Anonymous returns the principal of a request without credentials.
func Anonymous() Principal {
	return Principal{}
}

// IsAdmin reports whether the principal may manage every object.
func (p Principal) IsAdmin() bool {
	return p.Authenticated && p.IsStaff && p.IsSuperuser
}

// Role returns the principal's role in the capability matrix.
func (p Principal) Role() string {
	switch {
	case p.IsAdmin():
		return RoleAdmin
	case p.Authenticated:
		return RoleUser
	default:
		return RoleAnonymous
	}
}

// IsSafe reports whether method never mutates state.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ActionFor maps an HTTP method to an action; unknown methods map to "".
func ActionFor(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return ActionWrite
	}
	return ""
}
