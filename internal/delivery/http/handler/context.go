package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
)

// actorFrom returns the authenticated caller set by the auth middleware
func actorFrom(r *http.Request) (domain.Actor, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: claims.UserID, Role: domain.Role(claims.Role)}, true
}

// viewerFrom returns the caller's ID when the request is authenticated
func viewerFrom(r *http.Request) *uuid.UUID {
	actor, ok := actorFrom(r)
	if !ok {
		return nil
	}
	return &actor.UserID
}
