package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoshare-backend-go/internal/config"
	"todoshare-backend-go/internal/core"
	"todoshare-backend-go/internal/db"
	"todoshare-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) is expected to be
// applied to the router before this is called, typically in main.go.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	shareService core.ShareService,
	todoService core.TodoService,
) {
	// The Firebase Auth client must be available after db.InitFirestore();
	// without it no route can be secured.
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created.")
		panic("Firebase Auth client is nil during route setup")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	sessionHandler := NewSessionHandler(shareService)
	todoHandler := NewTodoHandler(todoService)
	shareHandler := NewShareHandler(shareService)

	apiV1 := router.Group("/api/v1")
	{
		// Called after client-side Firebase login; binds pending email-only
		// shares to the fresh uid.
		apiV1.POST("/users/initialize", authMW.VerifyToken(), sessionHandler.InitializeSession)

		todosGroup := apiV1.Group("/todos", authMW.VerifyToken())
		{
			todosGroup.GET("", todoHandler.ListTodos)
			todosGroup.POST("", todoHandler.CreateTodo)
			todosGroup.PATCH("/:todoId", todoHandler.UpdateTodo)
			todosGroup.DELETE("/:todoId", todoHandler.DeleteTodo)
			// Bulk deletes: whole category via query params, completed via body.
			todosGroup.DELETE("", todoHandler.DeleteCategory)
			todosGroup.POST("/clear-completed", todoHandler.ClearCompleted)
		}

		sharesGroup := apiV1.Group("/shares", authMW.VerifyToken())
		{
			sharesGroup.POST("", shareHandler.CreateShare)
			sharesGroup.DELETE("", shareHandler.RevokeShare)
			sharesGroup.POST("/leave", shareHandler.LeaveShare)
			sharesGroup.GET("/mine", shareHandler.ListMine)
			sharesGroup.GET("/with-me", shareHandler.ListSharedWithMe)
			sharesGroup.GET("/permissions", shareHandler.LookupPermissions)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Todoshare backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
