package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hassanhitleap1/bagisto-karaz/internal/api/handlers"
	"github.com/hassanhitleap1/bagisto-karaz/internal/api/middleware"
	"github.com/hassanhitleap1/bagisto-karaz/internal/config"
	"github.com/hassanhitleap1/bagisto-karaz/internal/database"
	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	taxonomyHandler := handlers.NewTaxonomyHandler(db.DB, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes (the catalog is written by the importer only; this surface is
	// read-only)
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		v1.GET("/categories", taxonomyHandler.ListCategories)
		v1.GET("/brands", taxonomyHandler.ListBrands)
		v1.GET("/attributes", taxonomyHandler.ListAttributes)
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
