package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/it-hub-api/internal/middleware"
	"github.com/noah-isme/it-hub-api/internal/models"
)

type sessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Handlers groups every endpoint handler mounted by RegisterRoutes.
type Handlers struct {
	Subjects  *SubjectHandler
	Files     *FileHandler
	Users     *UserHandler
	Auth      *AuthHandler
	Requests  *RequestHandler
	Dashboard *DashboardHandler
	Assistant *AssistantHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts the public and staff API under prefix. Session routes
// require the bearer token issued by login.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, sessions sessionAuthenticator) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.GET("/subjects", h.Subjects.List)
	api.GET("/subjects/:id", h.Subjects.Get)
	api.GET("/subjects/:id/files", h.Files.ListBySubject)
	api.GET("/files", h.Files.List)
	api.POST("/files/:id/download", h.Files.Download)
	api.GET("/files/:id/content", h.Files.Content)
	api.POST("/files/:id/rate", h.Files.Rate)
	api.POST("/requests", h.Requests.Submit)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", middleware.Session(sessions), h.Auth.Logout)
	api.GET("/auth/me", middleware.Session(sessions), h.Auth.Me)

	api.POST("/assistant/session", h.Assistant.Start)
	api.POST("/assistant/messages", h.Assistant.Message)

	admin := api.Group("/admin")
	admin.Use(middleware.Session(sessions), middleware.RequireStaff())
	admin.POST("/subjects", h.Subjects.Create)
	admin.DELETE("/subjects/:id", h.Subjects.Delete)
	admin.POST("/files", h.Files.Create)
	admin.POST("/files/upload", h.Files.Upload)
	admin.DELETE("/files/:id", h.Files.Delete)
	admin.GET("/users", h.Users.List)
	admin.POST("/users", h.Users.Create)
	admin.PATCH("/users/:id", h.Users.Update)
	admin.DELETE("/users/:id", h.Users.Delete)
	admin.PUT("/profile/password", h.Auth.ChangePassword)
	admin.GET("/requests", h.Requests.List)
	admin.GET("/dashboard", h.Dashboard.Summary)
	admin.GET("/dashboard/export", h.Dashboard.Export)
	admin.GET("/metrics", h.Metrics.System)
}
