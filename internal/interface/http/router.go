package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/lifeboard/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, verifier AccessTokenVerifier) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)
	router.NoRoute(notFound)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.POST("/logout", optionalAuth(verifier), handler.Logout)
		authGroup.GET("/profile", authenticate(verifier), handler.Profile)
		authGroup.PUT("/change-password", authenticate(verifier), handler.ChangePassword)

		goalsGroup := api.Group("/goals", authenticate(verifier))
		goalsGroup.GET("", handler.ListGoals)
		goalsGroup.GET("/stats", handler.GoalStats)
		goalsGroup.GET("/status/:status", handler.GoalsByStatus)
		goalsGroup.GET("/:id", handler.GetGoal)
		goalsGroup.POST("", handler.CreateGoal)
		goalsGroup.PUT("/:id", handler.UpdateGoal)
		goalsGroup.PUT("/:id/toggle", handler.ToggleGoal)
		goalsGroup.DELETE("/:id", handler.DeleteGoal)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
