package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/dto"
	apierrors "github.com/taskflow-hq/taskflow-api/internal/errors"
	"github.com/taskflow-hq/taskflow-api/internal/middleware"
	"github.com/taskflow-hq/taskflow-api/internal/services"
)

// AuthHandler coordinates the identity exchange and the cookie session.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// ExchangeToken signs a user in from an identity token. First-ever sign-in
// bootstraps the admin; later sign-ins create inactive staff accounts.
func (h *AuthHandler) ExchangeToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.ExchangeToken(req.Credential)
	if err != nil {
		if errors.Is(err, services.ErrMalformedToken) {
			apierrors.Unauthorized(c, "Invalid identity token")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout removes the session and clears the session pointer.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	h.authService.Logout()

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user, including pending-activation accounts
// so the client can render the waiting screen.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, user)
}
