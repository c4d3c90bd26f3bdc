package leave

import (
	"go-leave/internal/employee"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.Idempotency(rdb), handler.Create)
		leaves.GET("/my", handler.GetMy)
		leaves.GET("", middleware.RoleMiddleware(employee.RoleManager), handler.GetAll)
		leaves.GET("/:id", handler.GetById)
		leaves.PATCH("/:id/status", middleware.RoleMiddleware(employee.RoleManager), handler.SetStatus)
		leaves.PATCH("/:id/approve", middleware.RoleMiddleware(employee.RoleManager), handler.Approve)
		leaves.PATCH("/:id/reject", middleware.RoleMiddleware(employee.RoleManager), handler.Reject)
	}
}
