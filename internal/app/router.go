package app

import (
	"virtual_classroom_backend/docs"
	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/middleware"
	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)
	a.registerSessionRoutes(router, c)
}

// Public routes: the identity flow runs before any token exists.
func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/observer/enter", c.instructor.Enter)

		onboarding := public.Group("/onboarding")
		{
			onboarding.POST("", c.onboarding.Begin)
			onboarding.GET("/:id", c.onboarding.Get)
			onboarding.DELETE("/:id", c.onboarding.Abandon)
			onboarding.POST("/:id/code", c.onboarding.SubmitCode)
			onboarding.POST("/:id/confirm", c.onboarding.ConfirmIdentity)
			onboarding.POST("/:id/proceed", c.onboarding.Proceed)
			onboarding.POST("/:id/paperwork", c.onboarding.SubmitPaperwork)
			onboarding.POST("/:id/selfie", c.onboarding.SubmitSelfie)
			onboarding.POST("/:id/selfie/retake", c.onboarding.RetakePhoto)
			onboarding.POST("/:id/sound-check", c.onboarding.ConfirmSound)
			onboarding.POST("/:id/voice", c.onboarding.SubmitVoice)
			onboarding.POST("/:id/terms", c.onboarding.ContinueToTerms)
			onboarding.POST("/:id/terms/video-ended", c.onboarding.VideoEnded)
			onboarding.POST("/:id/terms/agreements", c.onboarding.SetAgreements)
			onboarding.POST("/:id/makeup-fee", c.onboarding.PayMakeupFee)
			onboarding.POST("/:id/enter", c.onboarding.Enter)
		}
	}
}

// Session routes require a classroom entry token.
func (a *App) registerSessionRoutes(router *gin.Engine, c *controllers) {
	router.GET("/api/events", middleware.EntryAuth(), func(ctx *gin.Context) {
		service.ServeWs(a.services.hub, ctx.Writer, ctx.Request)
	})

	sess := router.Group("/api/session")
	sess.Use(middleware.EntryAuth())
	{
		sess.GET("/:id", c.classroom.Snapshot)
		sess.POST("/:id/quiz", c.classroom.SubmitQuiz)
		sess.POST("/:id/quiz/close", c.classroom.CloseResults)
		sess.POST("/:id/camera", c.classroom.SetCamera)
		sess.POST("/:id/mute", c.classroom.SetMute)
		sess.POST("/:id/leave", c.classroom.Leave)
		sess.POST("/:id/chat", c.chat.Send)
		sess.GET("/:id/chat", c.chat.History)

		observer := sess.Group("")
		observer.Use(middleware.RequireRole(string(session.RoleInstructor), string(session.RoleAdmin)))
		{
			observer.POST("/:id/advance", c.instructor.Advance)
			observer.POST("/:id/screen-share", c.classroom.ToggleScreenShare)
			observer.POST("/:id/breakouts", c.instructor.StartBreakouts)
			observer.POST("/:id/participants/:studentId/mute", c.instructor.MuteParticipant)
			observer.POST("/:id/participants/:studentId/camera", c.instructor.ForceParticipantCamera)
			observer.POST("/:id/participants/:studentId/remove", c.instructor.RemoveStudent)
		}
	}
}
