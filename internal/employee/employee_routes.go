package employee

import (
	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	employees := r.Group("/employees")
	{
		employees.GET("",
			middleware.RateLimitByIP(5, 20),
			h.GetAll,
		)

		employees.GET("/:id",
			middleware.RateLimitByIP(5, 20),
			h.GetByID,
		)

		employees.POST("",
			middleware.RateLimitByIP(1, 5),
			h.Create,
		)
	}
}
