package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mood-ai/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	chatH *ChatHandler,
	dashH *DashboardHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	chat := api.Group("/chat")
	chat.POST("/anonymous", chatH.Anonymous)
	chatAuth := chat.Group("", JWTAuthMiddleware(jwtSvc))
	chatAuth.POST("/send", chatH.Send)
	chatAuth.GET("/history", chatH.History)
	chatAuth.DELETE("/:id", chatH.Delete)

	dashboard := api.Group("/dashboard", JWTAuthMiddleware(jwtSvc))
	dashboard.GET("/stats", dashH.Stats)

	admin := api.Group("/admin", JWTAuthMiddleware(jwtSvc), AdminOnlyMiddleware())
	admin.GET("/users", adminH.ListUsers)
	admin.GET("/chats", adminH.ListChats)
	admin.GET("/analytics", adminH.Analytics)
	admin.DELETE("/users/:id", adminH.DeleteUser)
	admin.DELETE("/chats/:id", adminH.DeleteChat)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
