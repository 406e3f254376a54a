package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/security"
)

// currentUserKey is the gin context key holding the authenticated user.
const currentUserKey = "currentUser"

// RequestID tags every request with a UUID, echoed in the X-Request-ID
// response header and attached to log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"request_id": requestID,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
			}).Error("request failed")
		}
	}
}

// UserAuth validates the bearer JWT and loads the current user row into the
// context. The persisted user is authoritative; the claims only locate it.
func UserAuth(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.AbortFail(c, http.StatusUnauthorized, "missing authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || strings.TrimSpace(token) == "" {
			respond.AbortFail(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errJWT != nil {
			if errors.Is(errJWT, security.ErrExpiredToken) {
				respond.AbortFail(c, http.StatusUnauthorized, "token expired")
				return
			}
			respond.AbortFail(c, http.StatusUnauthorized, "invalid token")
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			respond.AbortFail(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// AdminOnly rejects requests whose authenticated user lacks the admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respond.AbortFail(c, http.StatusUnauthorized, "no user found")
			return
		}
		if !user.IsAdmin() {
			respond.AbortFail(c, http.StatusForbidden, "you do not have administrator privileges")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user loaded by UserAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
