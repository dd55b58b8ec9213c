package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/accounts"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

// startSession logs u in on the cookie session and returns a bearer token
// for clients that do not keep cookies.
func startSession(c *gin.Context, svc *accounts.Service, u *models.User, status int) {
	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserKey, u.ID)
	if err := sess.Save(); err != nil {
		respondError(c, err)
		return
	}
	token, err := svc.IssueToken(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"user": newUser(u), "token": token})
}

// Signup creates an account and logs it in.
func Signup(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in accounts.SignupInput
		if !bindJSON(c, &in) {
			return
		}
		u, err := svc.Signup(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		startSession(c, svc, u, http.StatusCreated)
	}
}

// Login accepts a username or email with a password.
func Login(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if !bindJSON(c, &in) {
			return
		}
		u, err := svc.Login(c.Request.Context(), in.Username, in.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		startSession(c, svc, u, http.StatusOK)
	}
}

// Logout clears the session cookie.
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}

// WhoAmI returns the logged-in user.
func WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, newUser(middleware.CurrentUser(c)))
}
