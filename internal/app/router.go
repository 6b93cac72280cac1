package app

import (
	"skilltree_backend/docs"
	"skilltree_backend/internal/middleware"
	"skilltree_backend/internal/model"
	"skilltree_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.jwtSecret))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.jwtSecret), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/repair-order", c.admin.RepairOrder)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 查看模式允许游客访问，编辑模式在控制器中要求登录
		public.GET("/skilltrees/:id/tree", middleware.TryAuthMiddleware(a.jwtSecret), c.skill.GetTree)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/me", c.auth.Me)

	group.GET("/compositions", c.composition.ListCompositions)
	group.GET("/compositions/:id", c.composition.GetComposition)
	group.GET("/compositions/:id/completion", c.progress.GetCompletion)
	group.GET("/compositions/:id/completion/stream", c.progress.StreamCompletion)
	group.GET("/compositions/:id/progress", c.progress.GetSummary)
	group.GET("/compositions/:id/grades", c.evaluation.GetGrades)

	group.GET("/skills", c.skill.GetSkill)
	group.GET("/skills/flatten", c.skill.FlattenSkill)

	group.PUT("/progress", c.progress.SetStatus)
	group.GET("/evaluation-models", c.evaluation.ListModels)
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	teacher := group.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/compositions", c.composition.CreateComposition)
		teacher.PUT("/compositions/:id", c.composition.UpdateComposition)
		teacher.DELETE("/compositions/:id", c.composition.DeleteComposition)
		teacher.POST("/compositions/:id/skilltrees", c.composition.CreateSkilltree)

		teacher.PUT("/skilltrees/:id", c.composition.UpdateSkilltree)
		teacher.POST("/skilltrees/:id/move", c.composition.MoveSkilltree)
		teacher.DELETE("/skilltrees/:id", c.composition.DeleteSkilltree)

		teacher.POST("/skills", c.skill.CreateSkill)
		teacher.POST("/skills/sibling", c.skill.CreateSibling)
		teacher.PUT("/skills", c.skill.UpdateSkill)
		teacher.POST("/skills/move", c.skill.MoveSkill)
		teacher.DELETE("/skills", c.skill.DeleteSkill)
		teacher.POST("/skills/icon", c.skill.UploadIcon)

		teacher.POST("/evaluation-models", c.evaluation.CreateModel)
		teacher.POST("/evaluations", c.evaluation.RecordEvaluation)
	}
}
