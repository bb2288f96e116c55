package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytimer/backend/internal/handler"
	"studytimer/backend/internal/middleware"
	"studytimer/backend/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	timerHandler *handler.TimerHandler,
	taskHandler *handler.TaskHandler,
	reportHandler *handler.ReportHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	timer := api.Group("/timer")
	timer.Use(middleware.Auth(authService))
	timer.GET("/state", timerHandler.State)
	timer.POST("/start", timerHandler.Start)
	timer.POST("/pause", timerHandler.Pause)
	timer.POST("/reset", timerHandler.Reset)
	timer.POST("/skip", timerHandler.Skip)
	timer.POST("/mode", timerHandler.SwitchMode)
	timer.POST("/task", timerHandler.SetTask)
	timer.DELETE("", timerHandler.Release)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.Auth(authService))
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.POST("/:id/toggle", taskHandler.Toggle)
	tasks.DELETE("/:id", taskHandler.Delete)

	report := api.Group("/report")
	report.Use(middleware.Auth(authService))
	report.GET("/week", reportHandler.Week)
	report.GET("/goals", reportHandler.Goals)
	report.PUT("/goals", reportHandler.UpsertGoal)

	return engine
}
