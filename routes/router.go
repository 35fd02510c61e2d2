package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/controllers"
	"github.com/edulink-ug/edulink/middleware"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/storage"
	"github.com/edulink-ug/edulink/utils"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Users     *services.UserService
	Questions *services.QuestionService
	Answers   *services.AnswerService
	Reports   *services.ReportService
	Sessions  *services.SessionService
	Tutor     *services.TutorService
	Stats     *services.StatsService
	Files     storage.FileStore
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, svc Services) *gin.Engine {
	switch strings.ToLower(cfg.Gin.Mode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; fall back to plain recovery without one.
	if cfg.Gin.LogPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.Gin.LogPath, cfg.Log); err == nil {
			r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
			r.Use(ginzap.RecoveryWithZap(gl, false))
		} else {
			r.Use(gin.Recovery())
		}
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.App.AllowedOrigins) == 0 || (len(cfg.App.AllowedOrigins) == 1 && cfg.App.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.App.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if (cfg.Storage.Driver == "" || cfg.Storage.Driver == "local") && cfg.Storage.PublicPrefix != "" {
		r.Static(cfg.Storage.PublicPrefix, cfg.Storage.LocalDir)
	}

	authController := controllers.NewAuthController(svc.Users, cfg.App.TokenTTL)
	questionController := controllers.NewQuestionController(svc.Questions)
	answerController := controllers.NewAnswerController(svc.Answers)
	reportController := controllers.NewReportController(svc.Reports)
	sessionController := controllers.NewSessionController(svc.Sessions)
	chatController := controllers.NewChatController(svc.Tutor)
	uploadController := controllers.NewUploadController(svc.Files, cfg.Storage.MaxFiles, cfg.Storage.MaxUploadMB)
	statsController := controllers.NewStatsController(svc.Stats)
	adminController := controllers.NewAdminController(svc.Users)

	ipLimit := middleware.RateLimitMiddleware(cfg.App.RateLimitPerMinute)
	authed := []gin.HandlerFunc{middleware.AuthRequired(), ipLimit}

	r.GET("/health", statsController.Health)

	api := r.Group("/api/v1")
	api.GET("/health", statsController.Health)
	api.GET("/stats", statsController.GetStats)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", ipLimit, authController.Register)
	authGroup.POST("/login", ipLimit, authController.Login)
	authGroup.POST("/logout", append(authed, authController.Logout)...)
	authGroup.GET("/me", append(authed, authController.Me)...)
	authGroup.PATCH("/profile", append(authed, authController.UpdateProfile)...)

	api.GET("/users/leaderboard", authController.Leaderboard)
	api.GET("/users/:id", authController.GetUserPublic)

	api.GET("/questions", questionController.ListQuestions)
	api.GET("/questions/:id", questionController.GetQuestion)
	api.GET("/questions/:id/answers", answerController.ListAnswers)
	api.GET("/sessions", sessionController.ListSessions)
	api.GET("/sessions/:id", sessionController.GetSession)

	protected := api.Group("")
	protected.Use(authed...)

	protected.POST("/questions", questionController.CreateQuestion)
	protected.PUT("/questions/:id", questionController.UpdateQuestion)
	protected.DELETE("/questions/:id", questionController.DeleteQuestion)
	protected.POST("/questions/:id/upvote", questionController.ToggleUpvote)
	protected.POST("/questions/:id/close", questionController.CloseQuestion)
	protected.POST("/questions/:id/answers", answerController.CreateAnswer)

	protected.PUT("/answers/:id", answerController.UpdateAnswer)
	protected.DELETE("/answers/:id", answerController.DeleteAnswer)
	protected.POST("/answers/:id/vote", answerController.Vote)
	protected.POST("/answers/:id/accept", answerController.Accept)
	protected.POST("/answers/:id/verify", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), answerController.Verify)

	protected.POST("/reports", reportController.CreateReport)
	protected.GET("/reports/mine", reportController.ListMyReports)
	protected.GET("/reports/:id", reportController.GetReport)

	protected.POST("/sessions", sessionController.CreateSession)
	protected.POST("/sessions/:id/join", sessionController.JoinSession)
	protected.POST("/sessions/:id/leave", sessionController.LeaveSession)
	protected.POST("/sessions/:id/start", sessionController.StartSession)
	protected.POST("/sessions/:id/end", sessionController.EndSession)

	protected.POST("/chat", chatController.Ask)
	protected.GET("/chat/history", chatController.History)
	protected.DELETE("/chat/history", chatController.ClearHistory)

	protected.POST("/uploads", uploadController.Upload)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/reports", reportController.ListReports)
	admin.GET("/reports/:id", reportController.GetReport)
	admin.PATCH("/reports/:id", reportController.UpdateReport)
	admin.GET("/users", adminController.ListUsers)
	admin.PATCH("/users/:id/status", adminController.SetUserStatus)
	admin.POST("/users/:id/verify-teacher", adminController.VerifyTeacher)
	admin.POST("/answers/:id/reject", answerController.Reject)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
