package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/handlers"
	"github.com/craftbay/marketplace-api/internal/middleware"
	"github.com/craftbay/marketplace-api/internal/service"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	httpServer *http.Server
}

// New builds the router and wraps it in an http.Server with the configured
// timeouts.
func New(h *handlers.Handlers, identity *service.IdentityService, cfg *config.Config) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes(identity)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(identity *service.IdentityService) {
	authn := middleware.Auth(identity)

	s.router.GET("/", s.handlers.Root)
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := s.router.Group("/api/auth")
	{
		auth.POST("/signup", s.handlers.Signup)
		auth.POST("/login", s.handlers.Login)
	}

	// Product browsing is public; mutation requires a token.
	products := s.router.Group("/api/products")
	{
		products.GET("", s.handlers.ListProducts)
		products.GET("/:id", s.handlers.GetProduct)
		products.POST("", authn, s.handlers.CreateProduct)
		products.PUT("/:id", authn, s.handlers.UpdateProduct)
		products.DELETE("/:id", authn, s.handlers.DeleteProduct)
	}

	myProducts := s.router.Group("/api/my-products", authn)
	{
		myProducts.GET("", s.handlers.ListMyProducts)
		myProducts.POST("", s.handlers.CreateMyProduct)
		myProducts.GET("/:id", s.handlers.GetMyProduct)
		myProducts.PUT("/:id", s.handlers.UpdateMyProduct)
		myProducts.DELETE("/:id", s.handlers.DeleteMyProduct)
	}

	orders := s.router.Group("/api/orders", authn)
	{
		orders.GET("/buyer/:buyerId", s.handlers.ListOrdersByBuyer)
		orders.GET("/seller/:sellerId", s.handlers.ListOrdersBySeller)
		orders.GET("", s.handlers.ListOrders)
		orders.GET("/status", s.handlers.ListOrdersByStatus)
		orders.GET("/:id", s.handlers.GetOrder)
		orders.POST("", s.handlers.CreateOrder)
		orders.PUT("/:id", s.handlers.UpdateOrder)
		orders.DELETE("/:id", s.handlers.DeleteOrder)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving; blocks until shutdown or failure.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
