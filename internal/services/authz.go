package services

import "storefront/internal/domain"

// Authorize decides whether an actor controls a resource whose owning chain
// resolves to resourceOwnerID. Pure decision, no side effects.
//
// Allow iff the actor is an admin or is the owner. An empty owner id means
// the parent resource vanished, which reads as NotFound rather than a
// permission problem.
func Authorize(actor *domain.User, resourceOwnerID string) error {
	if actor == nil {
		return domain.Unauthorized("you are not logged in")
	}
	if resourceOwnerID == "" {
		return domain.NotFound("resource owner not found")
	}
	if actor.Role == domain.RoleAdmin || actor.ID == resourceOwnerID {
		return nil
	}
	return domain.Forbidden("you do not have permission to access this resource")
}
