package product

import (
	"campus-marketplace/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	products := r.Group("/products")
	{
		// limit 5 rps, burst 10 per IP
		products.GET("/:id",
			middleware.RateLimitByIP(5, 10),
			handler.GetByID,
		)
	}
}
