package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/middleware"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize.
// Clients call it after signing in so the account becomes resolvable by email
// for signer assignment and sharing.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	if email == "" {
		h.logger.Warn("Initializing profile without email claim", zap.String("userID", userID))
	}
	displayName := c.GetString(middleware.ContextUserDisplayName)
	photoURL := c.GetString(middleware.ContextUserPhotoURL)

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if created {
		h.logger.Info("User profile created", zap.String("userID", userID))
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}
