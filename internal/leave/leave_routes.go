package leave

import (
	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	leaves := r.Group("/leave")
	{
		leaves.GET("",
			middleware.RateLimitByIP(5, 20),
			h.GetAll,
		)

		applyChain := []gin.HandlerFunc{middleware.RateLimitByIP(1, 5)}
		if rdb != nil {
			applyChain = append(applyChain, middleware.Idempotency(rdb))
		}
		applyChain = append(applyChain, h.Apply)
		leaves.POST("", applyChain...)

		leaves.POST("/:id",
			middleware.RateLimitByIP(1, 5),
			h.UpdateStatus,
		)
	}

	r.GET("/summary",
		middleware.RateLimitByIP(5, 20),
		h.MonthlySummary,
	)
}
