package admin

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/http/api"
	"github.com/proxyvote-app/proxyvote/internal/http/api/admin/handlers"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
)

// RegisterAdminRoutes mounts the management API under /admin. Every route
// requires an authenticated admin user.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/admin")
	group.Use(api.UserAuth(db, jwtCfg), api.AdminOnly())

	group.GET("/check", func(c *gin.Context) {
		respond.OK(c, "Logged in as Admin")
	})

	userHandler := handlers.NewUserHandler(db)
	group.POST("/users", userHandler.Create)
	group.GET("/users", userHandler.List)
	group.GET("/users/:id", userHandler.Get)
	group.PUT("/users/:id/proxy", userHandler.UpdateProxy)
	group.PUT("/users/:id/group", userHandler.UpdateGroup)
	group.DELETE("/users/:id", userHandler.Delete)

	groupHandler := handlers.NewGroupHandler(db)
	group.POST("/groups", groupHandler.Create)
	group.GET("/groups", groupHandler.List)
	group.GET("/groups/:id/users", groupHandler.Users)
	group.DELETE("/groups/:id", groupHandler.Delete)

	formHandler := handlers.NewFormHandler(db)
	group.POST("/forms", formHandler.Create)
	group.GET("/forms", formHandler.List)
	group.DELETE("/forms/:id", formHandler.Delete)

	assignmentHandler := handlers.NewAssignmentHandler(db)
	group.POST("/assignments/user", assignmentHandler.AssignUser)
	group.DELETE("/assignments/user", assignmentHandler.RetractUser)
	group.POST("/assignments/group", assignmentHandler.AssignGroup)
	group.DELETE("/assignments/group", assignmentHandler.RetractGroup)

	ballotHandler := handlers.NewBallotHandler(db)
	group.GET("/ballots", ballotHandler.List)
}
