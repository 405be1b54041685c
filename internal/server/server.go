package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"novaforge-store/internal/config"
	"novaforge-store/internal/mailer"
	custommiddleware "novaforge-store/internal/middleware"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"
	"novaforge-store/internal/token"
	"novaforge-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(
		[]string{cfg.Frontend.BaseURL},
		cfg.Server.Env == "development",
	))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Redis client for rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize infrastructure services
	tokens := token.NewService(cfg.JWT.Secret, cfg.JWT.SessionExpiry, cfg.JWT.ResetExpiry)
	gateway := payment.NewStripeGateway(cfg.Stripe)
	mail := mailer.NewSMTPMailer(cfg.Mail)

	// Initialize services
	userService := service.NewUserService(userRepo, roleRepo, tokens, mail, cfg.Frontend.BaseURL)
	catalogService := service.NewCatalogService(roleRepo, categoryRepo, supplierRepo)
	productService := service.NewProductService(productRepo, categoryRepo, supplierRepo, gateway)
	checkoutService := service.NewCheckoutService(
		orderRepo,
		productRepo,
		gateway,
		cfg.Frontend.CheckoutSuccessURL,
		cfg.Frontend.CheckoutCancelURL,
		logger,
	)
	orderService := service.NewOrderService(orderRepo)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, logger)

	// Create shared middleware
	authMiddleware := custommiddleware.AuthMiddleware(tokens, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	loginRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(loginRateLimit)
		userHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
	})
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	checkoutHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
