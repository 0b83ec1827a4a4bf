package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-api-service/api/swagger"
	"user-api-service/internal/adapter/gin/handler"
	"user-api-service/internal/adapter/gin/middleware"
	"user-api-service/pkg/logger"
)

// DocsPath is where the Swagger UI is mounted.
const DocsPath = "/api-docs"

// Options tunes the router.
type Options struct {
	ServiceName   string
	AllowedOrigin string
	// ProtectUsers places the /usuarios routes behind the bearer token gate.
	ProtectUsers bool
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	verifier middleware.TokenVerifier,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(log),
		logger.RequestID(),
		middleware.AccessLog(log),
		middleware.CORS(opts.AllowedOrigin),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	docs := httpSwagger.Handler(httpSwagger.URL(DocsPath + "/doc.json"))
	router.GET(DocsPath+"/*any", func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", swagger.Spec)
			return
		}
		docs(c.Writer, c.Request)
	})

	api := router.Group("/api")
	{
		api.POST("/registro", userHandler.Register)
		api.POST("/login", userHandler.Login)

		users := api.Group("/usuarios")
		if opts.ProtectUsers {
			users.Use(middleware.Auth(verifier, log))
		}
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	return router
}
