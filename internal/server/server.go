package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"food-catalog/internal/cache"
	"food-catalog/internal/config"
	"food-catalog/internal/database"
	custommiddleware "food-catalog/internal/middleware"
	"food-catalog/internal/repository"
	"food-catalog/internal/service"
	"food-catalog/internal/storage"
	"food-catalog/internal/transport"

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

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db database.Service) (*Server, error) {
	s := &Server{config: cfg, logger: logger, db: db}

	if cfg.Cache.Driver == "redis" || cfg.RateLimit.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// Cache reads and the rate limiter both fail open
			logger.Warn("Redis is unreachable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
	}

	var store storage.Storage
	if cfg.Storage.Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicURL:     cfg.Storage.PublicURL,
			KeyPrefix:     "products",
			UploadTimeout: cfg.Storage.UploadTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image storage: %w", err)
		}
		store = s3Store
	} else {
		logger.Info("Image storage is not configured, uploads are disabled")
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(store),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

func (s *Server) newCache() cache.Cache {
	if s.config.Cache.Driver == "memory" || s.redis == nil {
		return cache.NewMemoryCache(s.config.Cache.ProductsTTL, 10*time.Minute)
	}
	return cache.NewRedisCache(s.redis, s.config.Cache.Prefix)
}

func (s *Server) routes(store storage.Storage) http.Handler {
	cfg := s.config
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(s.logger)...)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env != "production"))
	if cfg.RateLimit.Enabled && s.redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.Cache.Prefix + "ratelimit:",
		}, s.logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := s.db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	db := s.db.DB()
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	imageRepo := repository.NewProductImageRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	txManager := repository.NewTxManager(db)

	ttls := service.CacheTTLs{
		Categories: cfg.Cache.CategoriesTTL,
		Products:   cfg.Cache.ProductsTTL,
		Featured:   cfg.Cache.FeaturedTTL,
		Statistics: cfg.Cache.StatisticsTTL,
	}
	c := s.newCache()
	validator := service.NewValidator(categoryRepo, productRepo)

	categoryService := service.NewCategoryService(categoryRepo, validator, c, ttls)
	productService := service.NewProductService(productRepo, categoryRepo, imageRepo, txManager, validator, c, ttls)
	customerService := service.NewCustomerService(customerRepo)
	statisticsService := service.NewStatisticsService(productRepo, c, ttls)

	guards := transport.NewGuards(cfg.JWT.Secret, s.logger)
	handlers := []interface {
		RegisterRoutes(chi.Router, transport.Guards)
	}{
		transport.NewCatalogHandler(productService, statisticsService, s.logger),
		transport.NewCategoryHandler(categoryService, productService, s.logger),
		transport.NewProductHandler(productService, s.logger),
		transport.NewCustomerHandler(customerService, s.logger),
		transport.NewUploadHandler(store, productService, cfg.Storage.MaxUploadSizeMB<<20, s.logger),
	}

	router.Route("/api", func(r chi.Router) {
		for _, h := range handlers {
			h.RegisterRoutes(r, guards)
		}
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
