package checkout

import (
	"campus-marketplace/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts checkout under /cart and the provider callback under
// /payments. idempotency may be nil when redis is not configured.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, idempotency gin.HandlerFunc) {
	checkoutChain := []gin.HandlerFunc{middleware.RateLimitByUser(0.5, 2)}
	if idempotency != nil {
		checkoutChain = append(checkoutChain, idempotency)
	}
	checkoutChain = append(checkoutChain, handler.CreateSession)

	carts := r.Group("/cart")
	carts.Use(auth)
	{
		carts.POST("/create-checkout-session", checkoutChain...)
	}

	// provider callbacks carry no user token; the signature is checked in the service
	payments := r.Group("/payments")
	{
		payments.POST("/notification", middleware.RateLimitByIP(20, 40), handler.Notification)
	}
}
