package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 目录与分类匿名可浏览，登录后目录附带购买状态与进度
	browse := router.Group("/api")
	browse.Use(middleware.TryAuthMiddleware(cfg), middleware.TryProfileMiddleware(s.profile))
	{
		browse.GET("/courses", c.course.Catalog)
		browse.GET("/categories", c.course.ListCategories)
	}

	// 其余业务接口要求登录，档案中间件负责首次建档与能力集计算
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg), middleware.ProfileMiddleware(s.profile))
	{
		a.registerProfileRoutes(api, c)
		a.registerCourseRoutes(api, c)
		a.registerChapterRoutes(api, c)
		a.registerMessageRoutes(api, c)
		a.registerUploadRoutes(api, c)
		a.registerLeadRoutes(api, c)
		a.registerAdminRoutes(api, c)
	}
}

func (a *App) registerProfileRoutes(rg *gin.RouterGroup, c *controllers) {
	profiles := rg.Group("/profiles")
	{
		profiles.GET("/me", c.profile.GetMe)
		profiles.PATCH("/me", c.profile.UpdateMe)
		profiles.GET("", middleware.RoleMiddleware(model.RoleTeacher), c.profile.Search)
		profiles.PUT("/:id/role", middleware.RoleMiddleware(model.RoleAdmin), c.profile.UpdateRole)
	}
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/categories", middleware.RoleMiddleware(model.RoleAdmin), c.course.CreateCategory)

	courses := rg.Group("/courses")
	{
		courses.GET("/dashboard", c.course.Dashboard)
		courses.GET("/mine", middleware.RoleMiddleware(model.RoleTeacher), c.course.ListMine)
		courses.POST("", middleware.RoleMiddleware(model.RoleTeacher), c.course.Create)

		courses.GET("/:id", c.course.GetForEdit)
		courses.PATCH("/:id", c.course.Update)
		courses.DELETE("/:id", c.course.Delete)
		courses.PUT("/:id/publish", c.course.Publish)
		courses.PUT("/:id/unpublish", c.course.Unpublish)

		courses.GET("/:id/instructors", c.course.ListInstructors)
		courses.POST("/:id/instructors", c.course.AddInstructor)
		courses.DELETE("/:id/instructors/:profileId", c.course.RemoveInstructor)

		courses.GET("/:id/attachments", c.course.ListAttachments)
		courses.POST("/:id/attachments", c.course.AddAttachment)

		courses.GET("/:id/progress", c.chapter.GetProgress)

		courses.POST("/:id/chapters", c.chapter.Create)
		courses.PUT("/:id/chapters/reorder", c.chapter.Reorder)
		courses.POST("/:id/modules", c.chapter.CreateModule)
		courses.PUT("/:id/modules/reorder", c.chapter.ReorderModules)

		courses.POST("/:id/library", c.chapter.CreateLibraryAsset)
		courses.POST("/:id/library/import", c.chapter.ImportLibraryAsset)

		courses.POST("/:id/checkout", c.checkout.CreateOrder)
		courses.POST("/:id/checkout/verify", c.checkout.Verify)
	}

	rg.DELETE("/attachments/:attachmentId", c.course.DeleteAttachment)
}

func (a *App) registerChapterRoutes(rg *gin.RouterGroup, c *controllers) {
	chapters := rg.Group("/chapters")
	{
		chapters.GET("/:chapterId", c.chapter.GetView)
		chapters.PATCH("/:chapterId", c.chapter.Update)
		chapters.DELETE("/:chapterId", c.chapter.Delete)
		chapters.PUT("/:chapterId/publish", c.chapter.Publish)
		chapters.PUT("/:chapterId/unpublish", c.chapter.Unpublish)
		chapters.PUT("/:chapterId/progress", c.chapter.SetProgress)
	}

	modules := rg.Group("/modules")
	{
		modules.PATCH("/:moduleId", c.chapter.UpdateModule)
		modules.DELETE("/:moduleId", c.chapter.DeleteModule)
		modules.PUT("/:moduleId/publish", c.chapter.PublishModule)
		modules.PUT("/:moduleId/unpublish", c.chapter.UnpublishModule)
	}

	rg.GET("/library", middleware.RoleMiddleware(model.RoleTeacher), c.chapter.ListLibraryAssets)
}

func (a *App) registerMessageRoutes(rg *gin.RouterGroup, c *controllers) {
	courses := rg.Group("/courses/:id")
	{
		courses.GET("/messages", c.message.List)
		courses.POST("/messages", c.message.Post)
		courses.POST("/messages/read", middleware.RoleMiddleware(model.RoleTeacher), c.message.MarkRead)
		courses.POST("/messages/read-student", c.message.MarkReadStudent)
		courses.GET("/messages/unread", c.message.UnreadCount)
		courses.GET("/chat-students", middleware.RoleMiddleware(model.RoleTeacher), c.message.ChatStudents)
	}

	rg.GET("/messages/unread-badge", c.message.UnreadBadge)
	rg.GET("/mentor-connect", middleware.RoleMiddleware(model.RoleTeacher), c.message.Hub)
}

func (a *App) registerUploadRoutes(rg *gin.RouterGroup, c *controllers) {
	upload := rg.Group("/upload")
	upload.Use(middleware.RoleMiddleware(model.RoleTeacher))
	{
		upload.POST("/video", c.upload.UploadVideo)
		upload.POST("/file", c.upload.UploadFile)
	}
}

func (a *App) registerLeadRoutes(rg *gin.RouterGroup, c *controllers) {
	leads := rg.Group("/leads")
	leads.Use(middleware.RoleMiddleware(model.RoleMarketer))
	{
		leads.GET("", c.lead.List)
		leads.POST("", c.lead.Create)
		leads.GET("/:id", c.lead.Get)
		leads.PATCH("/:id", c.lead.Update)
		leads.DELETE("/:id", c.lead.Delete)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/courses/pending", c.course.ListPendingApproval)
		admin.PUT("/courses/:id/approve", c.course.Approve)
		admin.PUT("/courses/:id/reject", c.course.Reject)
	}
}
