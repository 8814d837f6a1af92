package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job_board/internal/config"
	"job_board/internal/handler"
	"job_board/internal/middleware"
	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/service"
	"job_board/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const authRateLimit = 30 // requests per IP per window on /auth routes

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}

	authCfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	redisURI := os.Getenv("REDIS_URI")
	if redisURI == "" {
		redisURI = "redis://localhost:6379"
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Redis Connection ---
	rdb, err := config.ConnectRedis(redisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// --- Initialize Utilities ---
	codec := utils.NewTokenCodec(authCfg.TokenSecret)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	otpRepo := repository.NewOtpRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)
	twoFactorRepo := repository.NewTwoFactorRepository(dbPool)
	superAdminRepo := repository.NewSuperAdminRepository(dbPool)
	oauthRepo := repository.NewOAuthAccountRepository(dbPool)
	jobRepo := repository.NewJobRepository(dbPool)

	// --- Initialize Services ---
	sessionService := service.NewSessionService(sessionRepo, userRepo, codec)
	twoFactorService := service.NewTwoFactorService(twoFactorRepo, userRepo, authCfg.TOTPIssuer, authCfg.OTPSalt)
	authService := service.NewAuthService(userRepo, sessionService, twoFactorService, codec)
	otpService := service.NewOtpService(otpRepo, userRepo, sessionService, rdb, service.LogSMSSender{}, authCfg.OTPSalt)
	oauthService := service.NewOAuthService(
		[]service.OAuthProvider{
			service.NewGoogleProvider(authCfg.Google),
			service.NewGitHubProvider(authCfg.GitHub),
		},
		userRepo, oauthRepo, sessionService, rdb,
	)
	superAdminService := service.NewSuperAdminService(superAdminRepo, userRepo, jobRepo, sessionService, codec)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, sessionService)
	otpHandler := handler.NewOtpHandler(otpService)
	twoFactorHandler := handler.NewTwoFactorHandler(twoFactorService)
	oauthHandler := handler.NewOAuthHandler(oauthService, authCfg.FrontendURL)
	superAdminHandler := handler.NewSuperAdminHandler(superAdminService, codec)

	// --- Setup Gin Router ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	// For production, configure specific origins, methods, headers
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	rateLimitMW := middleware.RateLimitMiddleware(rdb, authRateLimit)
	userAuthMW := middleware.UserAuth(codec)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, rateLimitMW)
	otpHandler.RegisterOtpRoutes(apiGroup, rateLimitMW)
	twoFactorHandler.RegisterTwoFactorRoutes(apiGroup, userAuthMW)
	oauthHandler.RegisterOAuthRoutes(apiGroup, model.ProviderGoogle, model.ProviderGitHub)
	superAdminHandler.RegisterSuperAdminRoutes(apiGroup)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "redis": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy", "redis": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
