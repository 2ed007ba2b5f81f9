package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/handlers"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/mailer"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	internalstripe "github.com/aminebadraoui/whatsapp-leadgen-server/internal/stripe"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/config"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/database"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/events"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
	mw "github.com/aminebadraoui/whatsapp-leadgen-server/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to redis (rate limiting)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(pool)
	bucketRepo := repository.NewBucketRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	eventRepo := repository.NewWebhookEventRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// External collaborators
	stripeClient := internalstripe.NewClient(internalstripe.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.App.ClientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     cfg.App.ClientURL + "/pricing",
	})

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Initialize services
	authService := service.NewAuthService(accountRepo, rateLimitRepo, mail, cfg)
	exportService := service.NewExportService(bucketRepo, contactRepo, eventBus)
	paymentService := service.NewPaymentService(stripeClient, accountRepo, eventRepo, mail, eventBus, cfg)
	sessionService := service.NewSessionService(sessionRepo, accountRepo)

	// Start the webhook processing loop
	if err := paymentService.Run(ctx); err != nil {
		logger.Error("Failed to start payment processor", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	h := handlers.New(authService, exportService, paymentService, sessionService, bucketRepo, contactRepo, templateRepo, cfg)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.App.ClientURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		MaxAge:         300,
	}))

	// Routes
	r.Mount("/api", h.Routes())

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
