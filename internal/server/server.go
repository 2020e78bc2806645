package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"shopapp/internal/config"
	"shopapp/internal/database"
	"shopapp/internal/metrics"
	custommiddleware "shopapp/internal/middleware"
	"shopapp/internal/repository"
	"shopapp/internal/search"
	"shopapp/internal/service"
	"shopapp/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	index  *search.Index
	redis  *redis.Client
	shops  service.ShopService
}

// NewServer wires repositories, services and handlers. redisClient may be
// nil when rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, index *search.Index, redisClient *redis.Client) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "shopapp"),
	)
	m := metrics.New(registry)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware(m))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "ok",
			"database": database.Health(r.Context(), db),
		}
		if n, err := index.Count(); err != nil {
			health["search"] = map[string]string{"status": "down", "error": err.Error()}
		} else {
			health["search"] = map[string]interface{}{"status": "up", "documents": n}
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, health)
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Initialize repositories
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	txManager := database.NewTxManager(db)

	// Initialize services
	shopService := service.NewShopService(txManager, shopRepo, index, m, logger)
	productService := service.NewProductService(txManager, productRepo, shopRepo, categoryRepo)
	categoryService := service.NewCategoryService(txManager, categoryRepo)

	// Initialize handlers
	shopHandler := transport.NewShopHandler(shopService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)

	// Register routes
	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit.Enabled && redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "shopapp_rate_limit",
			}, logger))
		}

		shopHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
	})

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
		index:  index,
		redis:  redisClient,
		shops:  shopService,
	}

	return server
}

// Reindex rebuilds the search index from the database
func (s *Server) Reindex(ctx context.Context) (int, error) {
	return s.shops.Reindex(ctx)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Error("Failed to close search index", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
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
