package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/middleware"
)

type errorMapping struct {
	target error
	status int
}

// Ordered; the first matching sentinel wins.
var errorMappings = []errorMapping{
	{core.ErrValidationFailed, http.StatusBadRequest},
	{core.ErrInvalidPermission, http.StatusBadRequest},
	{core.ErrSignerNotRegistered, http.StatusBadRequest},
	{core.ErrSelfCollaboration, http.StatusBadRequest},
	{core.ErrForbidden, http.StatusForbidden},
	{core.ErrDocumentNotFound, http.StatusNotFound},
	{core.ErrDocumentFileMissing, http.StatusNotFound},
	{core.ErrUserNotFound, http.StatusNotFound},
	{core.ErrNotCollaborator, http.StatusNotFound},
	{core.ErrAlreadyCollaborator, http.StatusConflict},
	{core.ErrInvalidStatusTransition, http.StatusConflict},
}

// respondError maps service errors to HTTP status codes and ErrorResponse.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, ErrorResponse{Error: m.target.Error(), Details: err.Error()})
			return
		}
	}

	logger.Error("Internal Server Error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(middleware.ContextRequestID)),
		zap.Error(err))
	if errors.Is(err, core.ErrStorageFailure) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: core.ErrStorageFailure.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
}

// callerID returns the authenticated user ID, writing a 401 when it is missing.
func callerID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	return userID, true
}
