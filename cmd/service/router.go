package service

import (
	"github.com/gin-gonic/gin"

	"github.com/reverie-ai/reverie/app/core"
	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/cmd/service/handler"
	"github.com/reverie-ai/reverie/cmd/service/middleware"
	"github.com/reverie-ai/reverie/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

func GetAILimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, "ai", func(c *gin.Context) string {
			return key
		}, opts...)
	}
}

// apiMetrics times every request per route and counts error statuses.
func apiMetrics(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := appCore.Metrics().ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= 400 {
			appCore.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)
	aiLimit := GetAILimitBuilder(s.Core)

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	s.Engine.Use(middleware.I18n(), middleware.AcceptLanguage(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.SetAppid(s.Core))
	s.Engine.Use(apiMetrics(s.Core))
	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.POST("/register", ipLimit("register"), s.Register)
		apiV1.POST("/login", ipLimit("login"), s.Login)
		apiV1.POST("/login/federated", ipLimit("login"), s.FederatedLogin)

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		authed.POST("/logout", s.Logout)
		authed.GET("/me", s.GetUser)

		user := authed.Group("/user")
		{
			user.PUT("/profile", userLimit("profile"), s.UpdateUserProfile)
		}

		journal := authed.Group("/journal")
		{
			entries := journal.Group("/entries")
			entries.GET("", s.ListJournalEntries)
			entries.POST("", userLimit("journal_modify"), s.CreateJournalEntry)
			entries.GET("/:entryID", s.GetJournalEntry)
			entries.PUT("/:entryID/turns", userLimit("journal_modify"), s.ContinueJournalEntry)
			entries.POST("/:entryID/reflect", aiLimit("reflect"), s.ReflectJournalEntry)
			entries.POST("/:entryID/title", aiLimit("reflect"), s.GenerateJournalTitle)
			entries.DELETE("/:entryID", s.DeleteJournalEntry)
		}

		capture := authed.Group("/capture")
		{
			recordings := capture.Group("/recordings")
			recordings.POST("", s.StartRecording)
			recordings.PUT("/:sessionID/chunks", s.AppendRecordingChunk)
			recordings.POST("/:sessionID/stop", s.StopRecording)
			recordings.DELETE("/:sessionID", s.ResetCaptureSession)

			transcriptions := capture.Group("/transcriptions")
			transcriptions.POST("", s.StartTranscription)
			transcriptions.PUT("/:sessionID/chunks", s.AppendTranscriptionChunk)
			transcriptions.POST("/:sessionID/stop", s.StopTranscription)
			transcriptions.DELETE("/:sessionID", s.ResetCaptureSession)
		}

		apiV1.GET("/capture/stream", middleware.AuthorizationFromQuery(s.Core), handler.Websocket(s.Core))

		admin := authed.Group("/admin")
		admin.Use(middleware.VerifyAdminPermission(s.Core))
		{
			admin.GET("/users", s.AdminListUsers)
			admin.PUT("/users/:userID/role", s.AdminUpdateUserRole)
			admin.DELETE("/users/:userID", s.AdminDeleteUser)
		}
	}
}
