package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/middleware"
)

// Services bundles the core services the HTTP layer exposes.
type Services struct {
	Users     core.UserService
	Documents core.DocumentService
	Sharing   core.SharingService
	Signing   core.SigningService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request ID, logging, recovery, CORS) is applied by the caller.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	services Services,
	maxUploadBytes int64,
) {
	authHandler := NewAuthHandler(services.Users, logger)
	userHandler := NewUserHandler(services.Users, logger)
	documentHandler := NewDocumentHandler(services.Documents, services.Sharing, maxUploadBytes, logger)
	signingHandler := NewSigningHandler(services.Signing, logger)

	apiV1 := router.Group("/api/v1")
	{
		users := apiV1.Group("/users", authMW.VerifyToken())
		{
			users.POST("/initialize", authHandler.InitializeUserProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
		}

		documents := apiV1.Group("/documents", authMW.VerifyToken())
		{
			documents.POST("", documentHandler.UploadDocument)
			documents.GET("", documentHandler.ListDocuments)
			documents.GET("/shared", documentHandler.ListSharedDocuments)
			documents.GET("/for-signing", signingHandler.ListDocumentsForSigning)
			documents.GET("/:id", documentHandler.GetDocument)
			documents.GET("/:id/role", documentHandler.GetRole)
			documents.GET("/:id/download", documentHandler.DownloadDocument)
			documents.PUT("/:id", documentHandler.UpdateDocument)
			documents.DELETE("/:id", documentHandler.DeleteDocument)

			documents.POST("/:id/share", documentHandler.ShareDocument)
			documents.POST("/:id/collaborators", documentHandler.AddCollaborator)
			documents.PUT("/:id/collaborators/:userId", documentHandler.UpdateCollaborator)
			documents.DELETE("/:id/collaborators/:userId", documentHandler.RemoveCollaborator)
		}

		signing := apiV1.Group("/signing", authMW.VerifyToken())
		{
			signing.GET("/documents", signingHandler.ListDocumentsForSigning)
			signing.POST("/sign", signingHandler.SignDocument)
			signing.GET("/:documentId", signingHandler.ListSignatures)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Document signing backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
