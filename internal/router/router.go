package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskledger/backend/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	User      *apiHandler.UserHandler
	Project   *apiHandler.ProjectHandler
	Task      *apiHandler.TaskHandler
	Dashboard *apiHandler.DashboardHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/users", authMiddleware(handlers.User.List))
	r.GET("/api/v1/dashboard", authMiddleware(handlers.Dashboard.Overview))

	r.GET("/api/v1/projects", authMiddleware(handlers.Project.List))
	r.POST("/api/v1/projects", authMiddleware(handlers.Project.Create))
	r.POST("/api/v1/projects/{id}/complete", authMiddleware(handlers.Project.Complete))
	r.GET("/api/v1/projects/{id}/tasks", authMiddleware(handlers.Project.ListTasks))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.POST("/api/v1/tasks/{id}/hours", authMiddleware(handlers.Task.AddHours))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.Complete))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))

	return r
}
