package app

import (
	"onboardflow_backend/docs"
	"onboardflow_backend/internal/config"
	"onboardflow_backend/internal/middleware"
	"onboardflow_backend/internal/model"
	"onboardflow_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerParticipantRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerParticipantRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 流程浏览
	rg.GET("/flows", c.flow.ListFlows)
	rg.GET("/flows/:id", c.flow.GetFlow)

	// 报名
	rg.POST("/enrollments", c.enrollment.Enroll)
	rg.GET("/enrollments", c.enrollment.ListMine)
	rg.GET("/enrollments/:enrollmentId/certificate", c.enrollment.GetCertificate)

	// 进度
	rg.POST("/stages/:stageId/start", c.progress.StartStage)
	rg.POST("/items/:itemId/complete", c.progress.CompleteItem)
	rg.GET("/enrollments/:enrollmentId/progress", c.progress.GetFlowProgress)

	// 作答
	rg.GET("/assessments/:assessmentId/questions", c.assessment.ListParticipantQuestions)
	rg.POST("/assessments/:assessmentId/attempts", c.attempt.StartAttempt)
	rg.GET("/assessments/:assessmentId/attempts/count", c.attempt.AttemptCount)
	rg.POST("/attempts/:attemptId/submit", c.attempt.SubmitAttempt)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/flows", c.flow.CreateFlow)
		admin.PUT("/flows/:id", c.flow.UpdateFlow)
		admin.POST("/flows/:id/publish", c.flow.PublishFlow)
		admin.DELETE("/flows/:id", c.flow.DeleteFlow)

		admin.POST("/stages", c.flow.CreateStage)
		admin.PUT("/stages/:id", c.flow.UpdateStage)
		admin.DELETE("/stages/:id", c.flow.DeleteStage)

		admin.POST("/items", c.flow.CreateItem)
		admin.PUT("/items/:id", c.flow.UpdateItem)
		admin.DELETE("/items/:id", c.flow.DeleteItem)

		admin.POST("/assessments", c.assessment.CreateAssessment)
		admin.GET("/assessments", c.assessment.ListAssessments)
		admin.GET("/assessments/:assessmentId", c.assessment.GetAssessment)
		admin.PUT("/assessments/:assessmentId", c.assessment.UpdateAssessment)
		admin.DELETE("/assessments/:assessmentId", c.assessment.DeleteAssessment)

		admin.POST("/questions", c.assessment.CreateQuestion)
		admin.PUT("/questions/:questionId", c.assessment.UpdateQuestion)
		admin.DELETE("/questions/:questionId", c.assessment.DeleteQuestion)
	}
}
