package app

import (
	"exam_prep_backend/docs"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/middleware"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		authGroup.GET("/tests/dashboard", c.test.GetDashboard)
		authGroup.GET("/tests/:id", c.test.GetTest)
		authGroup.GET("/tests/:id/analysis", c.test.GetAnalysis)
		authGroup.POST("/tests/:id/submit", c.test.SubmitTest)
		authGroup.GET("/attempts/:attemptId", c.test.GetAttempt)

		// 管理员接口：出题与用户管理
		adminGroup := authGroup.Group("")
		adminGroup.Use(middleware.RoleMiddleware(model.Admin, model.SuperAdmin))
		{
			adminGroup.POST("/tests", c.test.CreateTest)
			adminGroup.POST("/ai/generate", c.ai.Generate)

			adminGroup.GET("/users", c.user.ListUsers)
			adminGroup.PUT("/users/:userId/role", c.user.UpdateRole)
			adminGroup.POST("/users/:userId/approve", c.user.ApproveUser)
			adminGroup.PUT("/users/:userId/status", c.user.ToggleStatus)
		}

		// 超级用户接口：测验管理与报表
		superGroup := authGroup.Group("/admin")
		superGroup.Use(middleware.SuperuserMiddleware())
		{
			superGroup.GET("/tests", c.test.GetAdminTests)
			superGroup.PUT("/tests/:id", c.test.UpdateTest)
			superGroup.DELETE("/tests/:id", c.test.DeleteTest)
			superGroup.GET("/reports", c.test.GetAdminReports)
		}
	}
}
