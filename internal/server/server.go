package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalog-admin/internal/config"
	"catalog-admin/internal/database"
	custommiddleware "catalog-admin/internal/middleware"
	"catalog-admin/internal/repository"
	"catalog-admin/internal/service"
	"catalog-admin/internal/transport"
	"catalog-admin/migrations"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// Gateways are the persistence ports the server is wired with
type Gateways struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	DB         database.Service
}

// OpenGateways connects the persistence layer selected by cfg.Driver
func OpenGateways(cfg config.DatabaseConfig, logger *zap.Logger) (*Gateways, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &Gateways{Products: mem.Products(), Categories: mem.Categories()}, nil

	case config.DriverPostgres, "":
		dbService, err := database.New(cfg)
		if err != nil {
			return nil, err
		}

		if cfg.Migrate {
			if err := database.RunMigrations(dbService.DB(), migrations.FS, logger); err != nil {
				dbService.Close()
				return nil, err
			}
		}

		db := dbService.DB()
		return &Gateways{
			Products:   repository.NewProductRepository(db),
			Categories: repository.NewCategoryRepository(db),
			DB:         dbService,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewServer(cfg *config.Config, logger *zap.Logger, gateways *Gateways) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "catalog:ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		status := http.StatusOK
		if gateways.DB != nil {
			health := gateways.DB.Health(r.Context())
			body["database"] = health
			if health["status"] != "up" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		custommiddleware.RespondWithJSON(w, status, body)
	})

	// Initialize services
	productService := service.NewProductService(gateways.Products, gateways.Categories)
	categoryService := service.NewCategoryService(gateways.Categories, gateways.Products)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)

	// Register routes
	productHandler.RegisterRoutes(router)
	categoryHandler.RegisterRoutes(router)

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
		db:     gateways.DB,
		redis:  redisClient,
	}

	return server
}

// PingRedis checks the rate limiter backend when rate limiting is enabled
func (s *Server) PingRedis(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Ping(ctx).Err()
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
