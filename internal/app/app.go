package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/db"
	"github.com/proxyvote-app/proxyvote/internal/http/api"
	"github.com/proxyvote-app/proxyvote/internal/http/api/admin"
	"github.com/proxyvote-app/proxyvote/internal/http/api/front"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/security"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations, without serving.
func Migrate(cfg config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// NewRouter builds the gin engine with all routes mounted.
func NewRouter(conn *gorm.DB, jwtCfg config.JWTConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestID())

	engine.GET("/healthz", func(c *gin.Context) {
		sqlDB, errDB := conn.DB()
		if errDB != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			respond.Fail(c, http.StatusInternalServerError, "database unreachable")
			return
		}
		respond.OK(c, "ok")
	})

	front.RegisterFrontRoutes(engine, conn, jwtCfg)
	admin.RegisterAdminRoutes(engine, conn, jwtCfg)
	return engine
}

// RunServer boots the voting backend and serves until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := seedBootstrapAdmin(conn, cfg.Bootstrap); errSeed != nil {
		return errSeed
	}

	engine := NewRouter(conn, cfg.JWT)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (%s)", cfg.Server.Addr, db.DialectName(conn))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case errServe := <-serveErr:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	}
}

// seedBootstrapAdmin ensures an admin account exists on first run. A token
// from config is used as is; a generated one is logged exactly once.
func seedBootstrapAdmin(conn *gorm.DB, cfg config.BootstrapConfig) error {
	var count int64
	if errCount := conn.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; errCount != nil {
		return fmt.Errorf("app: count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	token := cfg.AdminToken
	generated := false
	if token == "" {
		var errToken error
		token, errToken = security.GenerateUserToken()
		if errToken != nil {
			return errToken
		}
		generated = true
	}

	adminUser := models.User{
		Name:        cfg.AdminName,
		Token:       token,
		Role:        models.RoleAdmin,
		ProxyAmount: cfg.AdminProxyAmount,
	}
	if errCreate := conn.Create(&adminUser).Error; errCreate != nil {
		return fmt.Errorf("app: seed admin: %w", errCreate)
	}

	if generated {
		log.Infof("bootstrap admin %q created with token %s", adminUser.Name, token)
	} else {
		log.Infof("bootstrap admin %q created", adminUser.Name)
	}
	return nil
}
