package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/sellers"
)

// On the profile routes "not a seller" means there is no profile to show.
var profileStatus = map[apperr.Kind]int{apperr.KindNotSeller: http.StatusNotFound}

// RegisterSeller turns the caller into a seller.
func RegisterSeller(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in sellers.RegisterInput
		if !bindJSON(c, &in) {
			return
		}
		seller, err := svc.Register(c.Request.Context(), middleware.CurrentUser(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"seller":  newSeller(seller),
			"message": "Successfully registered as seller",
		})
	}
}

// GetOwnProfile returns the caller's seller profile.
func GetOwnProfile(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		seller, err := svc.GetOwnProfile(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondErrorAs(c, err, profileStatus)
			return
		}
		c.JSON(http.StatusOK, newSeller(seller))
	}
}

// UpdateOwnProfile serves both PUT and PATCH; both are partial.
func UpdateOwnProfile(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in sellers.ProfileUpdate
		if !bindJSON(c, &in) {
			return
		}
		seller, err := svc.UpdateOwnProfile(c.Request.Context(), middleware.CurrentUser(c), in)
		if err != nil {
			respondErrorAs(c, err, profileStatus)
			return
		}
		c.JSON(http.StatusOK, newSeller(seller))
	}
}
