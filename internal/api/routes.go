package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/api/middleware"
)

// RegisterRoutes 注册页面路由；所有页面都经过会话中间件。
func RegisterRoutes(router *gin.Engine, deps Deps, logger *slog.Logger) {
	authHandler := NewAuthHandler(deps.Sessions, deps.Auth, deps.Limiter, logger)
	resumeHandler := NewResumeHandler(deps.Sessions, deps.Resumes, deps.Renderer, deps.Archive, deps.Storage)

	site := router.Group("/")
	site.Use(middleware.LoadSession(deps.Sessions))
	{
		site.GET("/", resumeHandler.Index)
		site.GET("/logout", authHandler.Logout)

		anon := site.Group("/")
		anon.Use(middleware.AnonymousOnly())
		{
			anon.GET("/register", authHandler.RegisterForm)
			anon.POST("/register", authHandler.Register)
			anon.GET("/login", authHandler.LoginForm)
			anon.POST("/login", authHandler.Login)
		}

		private := site.Group("/")
		private.Use(middleware.RequireSession(deps.Sessions))
		{
			private.GET("/dashboard", resumeHandler.Dashboard)
			private.GET("/create_resume", resumeHandler.CreateForm)
			private.Any("/process_resume", resumeHandler.ProcessResume)
			private.GET("/delete_resume", resumeHandler.DeleteResume)
			private.GET("/generate_pdf", resumeHandler.GeneratePDF)
			private.GET("/download_resume", resumeHandler.DownloadResume)
		}
	}
}
