package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kibetdev/ulms/internal/config"
	"github.com/kibetdev/ulms/internal/database"
	"github.com/kibetdev/ulms/internal/handlers"
	"github.com/kibetdev/ulms/internal/middleware"
	"github.com/kibetdev/ulms/internal/models"
	"github.com/kibetdev/ulms/internal/services"
	"github.com/kibetdev/ulms/internal/workers"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database connection
	db, err := database.New(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Redis connection
	redis, err := database.NewRedis(cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	// Use RSA key from configuration if available, otherwise generate a
	// fallback key for development
	jwtPrivateKey := cfg.JWT.PrivateKey
	if jwtPrivateKey == "" {
		jwtPrivateKey = getDefaultRSAPrivateKey()
	}

	clock := services.SystemClock()

	// Initialize services
	authService, err := services.NewAuthService(
		db.Queries,
		jwtPrivateKey,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		clock,
		logger,
	)
	if err != nil {
		slog.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}

	queueService := services.NewQueueService(redis.Client, logger)
	notificationService := services.NewNotificationService(
		db.Queries, queueService, services.NewLogSender(logger), clock, logger)

	inventoryService := services.NewInventoryService(db.Queries, logger)
	bookService := services.NewBookService(db.Queries)
	requestService := services.NewRequestService(
		db.Queries, notificationService, clock, logger, cfg.Library.MaxOpenRequests)

	finePolicy := services.FinePolicy{
		DefaultLoanDays:    cfg.Library.DefaultLoanDays,
		GracePeriodDays:    cfg.Library.GracePeriodDays,
		DailyRate:          decimal.NewFromFloat(cfg.Library.DailyFineRate),
		ReferenceDailyRate: decimal.NewFromFloat(cfg.Library.ReferenceDailyRate),
		MaxFineAmount:      decimal.NewFromFloat(cfg.Library.MaxFineAmount),
	}
	issueService := services.NewIssueService(
		db.Queries, inventoryService, requestService, notificationService,
		clock, logger, finePolicy)

	fineService := services.NewFineService(
		db.Queries, clock, logger, cfg.Library.MinWaiverReasonLength)
	reportService := services.NewReportService(db.Queries, clock, logger)

	// Initialize Gin router
	r := gin.New()

	// Add global middleware
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	// Initialize rate limiter and auth middleware
	rateLimiter := middleware.NewRateLimiter(redis.Client)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redis)
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService)
	requestHandler := handlers.NewRequestHandler(requestService)
	issueHandler := handlers.NewIssueHandler(issueService)
	fineHandler := handlers.NewFineHandler(fineService)
	reportHandler := handlers.NewReportHandler(reportService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Public routes (no authentication required)
	public := r.Group("/api/v1")
	{
		public.GET("/ping", healthHandler.Ping)
		public.GET("/health", healthHandler.Health)

		auth := public.Group("/auth")
		auth.Use(rateLimiter.AuthLimit())
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// Protected routes (authentication required)
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware.RequireAuth())
	protected.Use(rateLimiter.APILimit())
	{
		// Catalog browsing is open to all authenticated users
		protected.GET("/books", bookHandler.ListBooks)
		protected.GET("/books/search", rateLimiter.SearchLimit(), bookHandler.SearchBooks)
		protected.GET("/books/:id", bookHandler.GetBook)

		// Catalog management requires staff access
		books := protected.Group("/books")
		books.Use(authMiddleware.RequireStaff())
		{
			books.POST("", bookHandler.CreateBook)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
			books.GET("/stats", bookHandler.GetBookStats)
		}

		// Book requests
		protected.POST("/requests", requestHandler.SubmitRequest)
		protected.GET("/requests/mine", requestHandler.GetMyRequests)
		protected.GET("/requests/:id", requestHandler.GetRequest)
		protected.POST("/requests/:id/cancel", requestHandler.CancelRequest)

		requests := protected.Group("/requests")
		requests.Use(authMiddleware.RequireStaff())
		{
			requests.GET("", requestHandler.ListRequests)
			requests.POST("/:id/process", requestHandler.ProcessRequest)
		}

		// Issues and returns
		protected.GET("/issues/mine", issueHandler.GetMyIssues)
		protected.GET("/issues/:id", issueHandler.GetIssue)

		issues := protected.Group("/issues")
		issues.Use(authMiddleware.RequireStaff())
		{
			issues.POST("", issueHandler.IssueBook)
			issues.GET("", issueHandler.ListIssues)
			issues.POST("/:id/return", issueHandler.ReturnBook)
			issues.POST("/sweep", issueHandler.RunOverdueSweep)
		}

		// Fines
		protected.GET("/fines/mine", fineHandler.GetMyFines)
		protected.GET("/fines/:id", fineHandler.GetFine)
		protected.POST("/fines/:id/pay", fineHandler.PayFine)

		fines := protected.Group("/fines")
		fines.Use(authMiddleware.RequireStaff())
		{
			fines.GET("", fineHandler.ListFines)
			fines.POST("/:id/waive", fineHandler.WaiveFine)
		}

		// Notifications
		protected.GET("/notifications/mine", notificationHandler.GetMyNotifications)

		// Reports (staff only)
		reports := protected.Group("/reports")
		reports.Use(authMiddleware.RequireRole(models.RoleLibrarian, models.RoleAdmin))
		{
			reports.GET("/inventory", reportHandler.GetInventoryReport)
			reports.GET("/fines", reportHandler.GetFineReport)
			reports.GET("/overdue", reportHandler.GetOverdueReport)
		}
	}

	// Root health check
	r.GET("/health", healthHandler.Health)

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Put back any notifications stranded unsent by a previous crash
	if requeued, err := notificationService.RequeueUnsent(workerCtx, 100); err != nil {
		logger.Warn("Failed to requeue unsent notifications", "error", err)
	} else if requeued > 0 {
		logger.Info("Requeued unsent notifications", "count", requeued)
	}

	sweeper := workers.NewOverdueSweeper(issueService, cfg.Library.SweepInterval, logger)
	sweeper.Start(workerCtx)

	dispatcher := workers.NewNotificationDispatcher(queueService, notificationService, 10*time.Second, 50, logger)
	dispatcher.Start(workerCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", port, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	stopWorkers()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// getDefaultRSAPrivateKey generates a fallback RSA private key for
// development. Production deployments must supply a key via configuration.
func getDefaultRSAPrivateKey() string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		slog.Error("Failed to generate RSA key", "error", err)
		os.Exit(1)
	}

	privateKeyPEM := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	return string(pem.EncodeToMemory(privateKeyPEM))
}
