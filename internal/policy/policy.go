// Package policy decides who may write what. Reads are open to everyone,
// writes need an authenticated seller, and object writes need the owner.
package policy

import (
	"net/http"

	"marketplace-backend/internal/models"
)

// SafeMethod reports whether method is read-only.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Allow is the view-level check: safe methods pass, anything else needs an
// authenticated caller holding seller status.
func Allow(method string, caller *models.User) bool {
	if SafeMethod(method) {
		return true
	}
	return IsSeller(caller)
}

// AllowObject is the object-level check for a resource whose recorded
// owner is ownerUserID.
func AllowObject(method string, caller *models.User, ownerUserID uint) bool {
	if SafeMethod(method) {
		return true
	}
	return IsOwner(caller, ownerUserID)
}

// IsSeller reports whether caller is logged in with a seller profile.
func IsSeller(caller *models.User) bool {
	return caller != nil && caller.ID != 0 && caller.IsSeller
}

// IsOwner reports whether caller is the user ownerUserID.
func IsOwner(caller *models.User, ownerUserID uint) bool {
	return caller != nil && caller.ID != 0 && caller.ID == ownerUserID
}
