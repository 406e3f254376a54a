package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/proxyvote-app/proxyvote/internal/db"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/security"
	"github.com/proxyvote-app/proxyvote/internal/voting"
)

// UserHandler manages voter accounts.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// userDTO shapes a user for admin responses. The login token is only
// included right after creation.
type userDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	ProxyAmount int64   `json:"proxyAmount"`
	Email       *string `json:"email,omitempty"`
	UserGroupID *uint64 `json:"groupId,omitempty"`
	Token       string  `json:"token,omitempty"`
}

func toUserDTO(user models.User) userDTO {
	return userDTO{
		ID:          user.ID,
		Name:        user.Name,
		Role:        user.Role,
		ProxyAmount: user.ProxyAmount,
		Email:       user.Email,
		UserGroupID: user.UserGroupID,
	}
}

// createUserRequest defines the POST /admin/users body.
type createUserRequest struct {
	Name        string  `json:"name"`
	ProxyAmount int64   `json:"proxyAmount"`
	Email       *string `json:"email"`
	GroupID     *uint64 `json:"groupId"`
	Role        string  `json:"role"`
	Password    string  `json:"password"`
}

// Create registers a user and returns the generated login token. The token
// is shown exactly once; only the user record is stored.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		respond.Fail(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.ProxyAmount <= 0 {
		respond.Fail(c, http.StatusBadRequest, "proxyAmount must be positive")
		return
	}
	role := models.RoleUser
	if body.Role != "" {
		if body.Role != models.RoleUser && body.Role != models.RoleAdmin {
			respond.Fail(c, http.StatusBadRequest, "unknown role")
			return
		}
		role = body.Role
	}

	token, errToken := security.GenerateUserToken()
	if errToken != nil {
		log.WithError(errToken).Error("generate token failed")
		respond.Fail(c, http.StatusInternalServerError, "generate token failed")
		return
	}

	user := models.User{
		Name:        name,
		Token:       token,
		Role:        role,
		ProxyAmount: body.ProxyAmount,
		Email:       body.Email,
	}
	if body.Password != "" {
		hash, errHash := security.HashPassword(body.Password)
		if errHash != nil {
			log.WithError(errHash).Error("hash password failed")
			respond.Fail(c, http.StatusInternalServerError, "hash password failed")
			return
		}
		user.Password = hash
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if body.GroupID != nil {
			var group models.UserGroup
			if errFind := tx.Select("id").First(&group, *body.GroupID).Error; errFind != nil {
				if errors.Is(errFind, gorm.ErrRecordNotFound) {
					return voting.ErrNotFound
				}
				return fmt.Errorf("load group: %w", errFind)
			}
			user.UserGroupID = body.GroupID
		}
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			return fmt.Errorf("create user: %w", errCreate)
		}
		if body.GroupID != nil {
			if errSync := voting.SyncMemberAssignments(tx, user.ID, *body.GroupID); errSync != nil {
				return errSync
			}
		}
		return nil
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("create user failed")
		respond.Fail(c, http.StatusInternalServerError, "create user failed")
		return
	}

	dto := toUserDTO(user)
	dto.Token = token
	respond.OK(c, dto)
}

// List returns all users, optionally filtered by a case-insensitive name
// substring via the name query parameter.
func (h *UserHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+name+"%")
		query = query.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var users []models.User
	if errFind := query.Order("id ASC").Find(&users).Error; errFind != nil {
		log.WithError(errFind).Error("list users failed")
		respond.Fail(c, http.StatusInternalServerError, "list users failed")
		return
	}

	out := make([]userDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toUserDTO(user))
	}
	respond.OK(c, out)
}

// Get returns one user with assignments and group preloaded.
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("UserGroup").
		Preload("UserForms").
		First(&user, userID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respond.Fail(c, http.StatusBadRequest, "user not found")
			return
		}
		log.WithError(errFind).Error("load user failed")
		respond.Fail(c, http.StatusInternalServerError, "load user failed")
		return
	}

	forms := make([]gin.H, 0, len(user.UserForms))
	for _, userForm := range user.UserForms {
		forms = append(forms, gin.H{"formId": userForm.FormID, "hasVoted": userForm.HasVoted})
	}
	dto := toUserDTO(user)
	payload := gin.H{"user": dto, "forms": forms}
	if user.UserGroup != nil {
		payload["groupName"] = user.UserGroup.Name
	}
	respond.OK(c, payload)
}

// updateProxyRequest defines the PUT /admin/users/:id/proxy body.
type updateProxyRequest struct {
	ProxyAmount int64 `json:"proxyAmount"`
}

// UpdateProxy sets a user's proxy amount. Votes already cast keep the
// amount they were cast with.
func (h *UserHandler) UpdateProxy(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateProxyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProxyAmount <= 0 {
		respond.Fail(c, http.StatusBadRequest, "proxyAmount must be positive")
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("proxy_amount", body.ProxyAmount)
	if res.Error != nil {
		log.WithError(res.Error).Error("update proxy failed")
		respond.Fail(c, http.StatusInternalServerError, "update proxy failed")
		return
	}
	if res.RowsAffected == 0 {
		respond.Fail(c, http.StatusBadRequest, "user not found")
		return
	}
	respond.OK(c, fmt.Sprintf("Proxy amount of user %d set to %d", userID, body.ProxyAmount))
}

// updateGroupRequest defines the PUT /admin/users/:id/group body.
type updateGroupRequest struct {
	GroupID uint64 `json:"groupId"`
}

// UpdateGroup moves a user into a group. The user inherits every form the
// group holds in the same transaction.
func (h *UserHandler) UpdateGroup(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.GroupID == 0 {
		respond.Fail(c, http.StatusBadRequest, "groupId is required")
		return
	}

	var user *models.User
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		changed, errChange := voting.ChangeUserGroup(tx, userID, body.GroupID)
		if errChange != nil {
			return errChange
		}
		user = changed
		return nil
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("change group failed")
		respond.Fail(c, http.StatusInternalServerError, "change group failed")
		return
	}
	respond.OK(c, toUserDTO(*user))
}

// Delete removes a user together with its assignments and ballot records.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return voting.DeleteUser(tx, userID)
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("delete user failed")
		respond.Fail(c, http.StatusInternalServerError, "delete user failed")
		return
	}
	respond.OK(c, fmt.Sprintf("User %d deleted", userID))
}

// parseIDParam parses a numeric path parameter, writing the error response
// itself when the value is not a positive integer.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		respond.Fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
