package cart

import (
	"campus-marketplace/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	carts := r.Group("/cart")
	carts.Use(auth)
	{
		carts.GET("", middleware.RateLimitByUser(10, 20), handler.Get)
		carts.GET("/count", middleware.RateLimitByUser(10, 20), handler.Count)

		// mutations: limit 3 rps, burst 6
		mutationLimit := middleware.RateLimitByUser(3, 6)

		carts.POST("/add", mutationLimit, handler.AddItem)
		carts.DELETE("/:itemId", mutationLimit, handler.RemoveItem)
		carts.DELETE("", mutationLimit, handler.Clear)
	}
}
