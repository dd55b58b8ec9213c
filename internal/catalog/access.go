package catalog

import (
	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/policy"
)

func requireSeller(caller *models.User) error {
	if caller == nil || caller.ID == 0 {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	if !policy.IsSeller(caller) {
		return apperr.Forbidden("You do not have permission to perform this action.")
	}
	return nil
}

func isOwner(caller *models.User, ownerUserID uint) bool {
	return policy.IsOwner(caller, ownerUserID)
}
