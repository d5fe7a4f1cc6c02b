package rest

import (
	"net/http"

	"resto-pos/internal/menu"
	"resto-pos/internal/metrics"
	"resto-pos/internal/middleware"
	"resto-pos/internal/order"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	menuSvc  menu.Service
	orderSvc order.Service
	registry *metrics.Registry
}

func NewHandler(menuSvc menu.Service, orderSvc order.Service, registry *metrics.Registry) *Handler {
	return &Handler{
		menuSvc:  menuSvc,
		orderSvc: orderSvc,
		registry: registry,
	}
}

// NewRouter wires the full HTTP surface. The frontend polls these endpoints
// on a fixed interval; there is no push channel.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(h.registry))
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/menu-items", h.ListMenuItems)
		api.POST("/menu-items", h.CreateMenuItem)
		api.PUT("/menu-items/:id", h.UpdateMenuItem)
		api.DELETE("/menu-items/:id", h.DeleteMenuItem)

		api.GET("/orders", h.ListOrders)
		api.POST("/orders", h.CreateOrder)
		api.PUT("/orders/:id", h.UpdateOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
		api.DELETE("/orders/:id", h.DeleteOrder)
	}

	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "resto-pos",
		"uptime":          h.registry.Uptime().String(),
		"requests":        h.registry.Requests.Load(),
		"failed_requests": h.registry.FailedRequests.Load(),
	})
}
