package employee

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.POST("", middleware.RoleMiddleware(RoleManager), handler.Create)
		employees.GET("", middleware.RoleMiddleware(RoleManager), handler.GetAll)
		employees.GET("/:id", handler.GetById)
		employees.GET("/:id/balance", handler.GetBalance)
	}
}
