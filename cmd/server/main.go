package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docsign-backend-go/internal/api"
	"docsign-backend-go/internal/cache"
	"docsign-backend-go/internal/config"
	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/crypto"
	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/middleware"
	"docsign-backend-go/internal/storage"
)

func main() {
	if strings.ToLower(os.Getenv("GIN_MODE")) != "release" {
		// A missing .env is normal outside local development.
		_ = godotenv.Load()
	}

	// --- 1. Initialize Logger (Zap) ---
	newLogger := zap.NewDevelopment
	if strings.ToLower(os.Getenv("GIN_MODE")) == "release" {
		newLogger = zap.NewProduction
	}
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.",
		zap.String("authMode", appConfig.AuthMode),
		zap.String("storageBackend", appConfig.StorageBackend))

	// --- 3. Initialize Firebase Admin SDK ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	// --- 4. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	auditRepo := db.NewFirestoreAuditRepository(clients.Firestore)
	documentRepo := db.NewFirestoreDocumentRepository(clients.Firestore, zapLogger)
	signatureRepo := db.NewFirestoreSignatureRepository(clients.Firestore)

	// --- 5. Initialize Infrastructure ---
	var files storage.FileStore
	switch appConfig.StorageBackend {
	case "gcs":
		files, err = storage.NewGCSStore(initCtx, clients.App, appConfig.StorageBucket, zapLogger)
	default:
		files, err = storage.NewLocalStore(appConfig.UploadDir, zapLogger)
	}
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize file storage", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(appConfig.RabbitMQURL, appConfig.RabbitMQQueue, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		publisher = rabbit
	} else {
		zapLogger.Warn("RABBITMQ_URL is not configured; document notifications are disabled.")
	}
	defer publisher.Close()

	var sealer core.SignatureSealer
	if appConfig.SignatureEncryptionKey != "" {
		key, err := crypto.DecodeKey(appConfig.SignatureEncryptionKey)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Invalid SIGNATURE_ENCRYPTION_KEY", zap.Error(err))
		}
		sealer = core.NewAESSealer(key)
	}

	// --- 6. Initialize Services ---
	auditService := core.NewAuditService(auditRepo)

	var redisCache *cache.RedisCache
	if appConfig.RedisAddr != "" {
		redisCache, err = cache.NewRedisCache(initCtx, cache.RedisOptions{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
	}

	var userService core.UserService
	var directory core.Directory
	if redisCache != nil {
		userService = core.NewUserService(userRepo, core.WithDirectoryCache(redisCache, zapLogger))
		directory = core.NewCachedDirectory(userService, redisCache, appConfig.DirectoryCacheTTL, zapLogger)
		zapLogger.Info("Directory lookups cached in Redis", zap.Duration("ttl", appConfig.DirectoryCacheTTL))
	} else {
		userService = core.NewUserService(userRepo)
		directory = userService
	}

	documentService := core.NewDocumentService(documentRepo, userService, directory, files, auditService, publisher, zapLogger)
	sharingService := core.NewSharingService(documentRepo, userService, directory, auditService, publisher, zapLogger)
	signingService := core.NewSigningService(documentRepo, signatureRepo, userService, sealer, auditService, publisher, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))
	if appConfig.ClientURL == "" {
		zapLogger.Warn("CLIENT_URL is not configured; CORS allows all origins.")
	}

	var verifier middleware.TokenVerifier
	if appConfig.AuthMode == "jwt" {
		verifier = middleware.NewJWTVerifier(appConfig.JWTSecret)
	} else {
		verifier = middleware.NewFirebaseVerifier(clients.Auth)
	}
	authMW := middleware.NewAuthMiddleware(verifier, zapLogger)

	// --- 8. Setup API Routes ---
	api.SetupRoutes(router, zapLogger, authMW, api.Services{
		Users:     userService,
		Documents: documentService,
		Sharing:   sharingService,
		Signing:   signingService,
	}, appConfig.MaxUploadMB<<20)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
