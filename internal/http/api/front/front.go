package front

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/http/api"
	"github.com/proxyvote-app/proxyvote/internal/http/api/front/handlers"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
)

// RegisterFrontRoutes registers the login and voter-facing routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	r.POST("/login", authHandler.Login)

	authed := r.Group("")
	authed.Use(api.UserAuth(db, jwtCfg))

	authed.GET("/protect", func(c *gin.Context) {
		respond.OK(c, "Protect success")
	})

	formHandler := handlers.NewFormHandler(db)
	authed.GET("/forms", formHandler.List)
	authed.GET("/forms/unvoted", formHandler.ListUnvoted)
	authed.GET("/proxy", formHandler.Proxy)
	authed.PUT("/forms/:formId", formHandler.Vote)
}
