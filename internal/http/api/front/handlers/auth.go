package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/security"
)

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// loginRequest defines the login body. Either the secret token or, for
// accounts that have one, a password identifies the user.
type loginRequest struct {
	UserName string `json:"userName"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login validates credentials and issues a JWT embedding id, name, role,
// and the proxy amount at login time.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusUnauthorized, "No user or token provided")
		return
	}
	userName := strings.TrimSpace(body.UserName)
	token := strings.TrimSpace(body.Token)
	password := strings.TrimSpace(body.Password)
	if userName == "" || (token == "" && password == "") {
		respond.Fail(c, http.StatusUnauthorized, "No user or token provided")
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("name = ?", userName).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respond.Fail(c, http.StatusUnauthorized, "Incorrect Login Information")
			return
		}
		log.WithError(errFind).Error("login query failed")
		respond.Fail(c, http.StatusInternalServerError, "query failed")
		return
	}

	authenticated := false
	switch {
	case token != "":
		authenticated = security.TokensEqual(user.Token, token)
	case password != "" && user.Password != "":
		authenticated = security.CheckPassword(user.Password, password)
	}
	if !authenticated {
		respond.Fail(c, http.StatusUnauthorized, "Incorrect Login Information")
		return
	}

	signed, errSign := security.GenerateToken(h.jwtCfg.Secret, user.ID, user.Name, user.Role, user.ProxyAmount, h.jwtCfg.Expiry())
	if errSign != nil {
		log.WithError(errSign).Error("sign token failed")
		respond.Fail(c, http.StatusInternalServerError, "sign token failed")
		return
	}

	respond.OK(c, gin.H{"token": signed})
}
