// Package policy decides whether a principal may call an endpoint and
// whether it may touch a particular object.
package policy

import "github.com/google/uuid"

// Resources of the capability matrix.
const (
	ResourceCatalog = "catalog"
	ResourceRecipe  = "recipe"
	ResourceSocial  = "social"
	ResourceAccount = "account"

	// resourceOthersRecipes guards changes to recipes the caller did not write.
	resourceOthersRecipes = "recipe.others"
)

// Policy is evaluated per request. HasPermission runs before the handler;
// HasObjectPermission runs once the handler has loaded the target object.
type Policy interface {
	HasPermission(p Principal, method string) bool
	HasObjectPermission(p Principal, method string, ownerID uuid.UUID) bool
}

// ReadOnlyOrAdminWrite lets anyone read and only admins mutate.
type ReadOnlyOrAdminWrite struct {
	e *Enforcer
}

func NewReadOnlyOrAdminWrite(e *Enforcer) ReadOnlyOrAdminWrite {
	return ReadOnlyOrAdminWrite{e: e}
}

func (r ReadOnlyOrAdminWrite) HasPermission(p Principal, method string) bool {
	return r.e.Allowed(p.Role(), ResourceCatalog, ActionFor(method))
}

func (r ReadOnlyOrAdminWrite) HasObjectPermission(p Principal, method string, _ uuid.UUID) bool {
	return r.HasPermission(p, method)
}

// AuthorOrReadOnly lets anyone read, authenticated users create, and only the
// author or an admin change an existing object.
type AuthorOrReadOnly struct {
	e *Enforcer
}

func NewAuthorOrReadOnly(e *Enforcer) AuthorOrReadOnly {
	return AuthorOrReadOnly{e: e}
}

func (a AuthorOrReadOnly) HasPermission(p Principal, method string) bool {
	return a.e.Allowed(p.Role(), ResourceRecipe, ActionFor(method))
}

func (a AuthorOrReadOnly) HasObjectPermission(p Principal, method string, ownerID uuid.UUID) bool {
	if IsSafe(method) {
		return true
	}
	if !a.HasPermission(p, method) {
		return false
	}
	if p.ID == ownerID {
		return true
	}
	return a.e.Allowed(p.Role(), resourceOthersRecipes, ActionFor(method))
}

// Authenticated requires a logged-in principal for every method on resource.
type Authenticated struct {
	e        *Enforcer
	resource string
}

func NewAuthenticated(e *Enforcer, resource string) Authenticated {
	return Authenticated{e: e, resource: resource}
}

func (a Authenticated) HasPermission(p Principal, method string) bool {
	return p.Authenticated && a.e.Allowed(p.Role(), a.resource, ActionFor(method))
}

func (a Authenticated) HasObjectPermission(p Principal, method string, _ uuid.UUID) bool {
	return a.HasPermission(p, method)
}

// AllowAny admits every caller.
type AllowAny struct{}

func (AllowAny) HasPermission(Principal, string) bool { return true }

func (AllowAny) HasObjectPermission(Principal, string, uuid.UUID) bool { return true }
