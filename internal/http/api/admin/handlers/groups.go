package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/voting"
)

// GroupHandler manages user groups.
type GroupHandler struct {
	db *gorm.DB
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

// createGroupRequest defines the POST /admin/groups body.
type createGroupRequest struct {
	Name string `json:"name"`
}

// Create registers a new empty group.
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		respond.Fail(c, http.StatusBadRequest, "name is required")
		return
	}

	group := models.UserGroup{Name: name}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&group).Error; errCreate != nil {
		log.WithError(errCreate).Error("create group failed")
		respond.Fail(c, http.StatusInternalServerError, "create group failed")
		return
	}
	respond.OK(c, gin.H{"id": group.ID, "name": group.Name})
}

// List returns every group with its member count.
func (h *GroupHandler) List(c *gin.Context) {
	var groups []models.UserGroup
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Users").
		Order("id ASC").
		Find(&groups).Error
	if errFind != nil {
		log.WithError(errFind).Error("list groups failed")
		respond.Fail(c, http.StatusInternalServerError, "list groups failed")
		return
	}

	out := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		out = append(out, gin.H{"id": group.ID, "name": group.Name, "memberCount": len(group.Users)})
	}
	respond.OK(c, out)
}

// Users returns the members of one group.
func (h *GroupHandler) Users(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var group models.UserGroup
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Users").
		First(&group, groupID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respond.Fail(c, http.StatusBadRequest, "group not found")
			return
		}
		log.WithError(errFind).Error("load group failed")
		respond.Fail(c, http.StatusInternalServerError, "load group failed")
		return
	}

	members := make([]userDTO, 0, len(group.Users))
	for _, member := range group.Users {
		members = append(members, toUserDTO(member))
	}
	respond.OK(c, gin.H{"id": group.ID, "name": group.Name, "users": members})
}

// Delete removes a group. A group that still has members is rejected and
// left untouched.
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return voting.DeleteUserGroup(tx, groupID)
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("delete group failed")
		respond.Fail(c, http.StatusInternalServerError, "delete group failed")
		return
	}
	respond.OK(c, fmt.Sprintf("Group %d deleted", groupID))
}
