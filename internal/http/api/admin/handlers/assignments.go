package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/voting"
)

// AssignmentHandler grants and retracts voting rights on forms.
type AssignmentHandler struct {
	db *gorm.DB
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{db: db}
}

// userAssignmentRequest addresses a (form, user) pair.
type userAssignmentRequest struct {
	FormID uint64 `json:"formId"`
	UserID uint64 `json:"userId"`
}

// groupAssignmentRequest addresses a (form, group) pair.
type groupAssignmentRequest struct {
	FormID  uint64 `json:"formId"`
	GroupID uint64 `json:"groupId"`
}

// AssignUser grants a single user the right to vote on a form.
func (h *AssignmentHandler) AssignUser(c *gin.Context) {
	var body userAssignmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.FormID == 0 || body.UserID == 0 {
		respond.Fail(c, http.StatusBadRequest, "formId and userId are required")
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		_, errAssign := voting.AssignFormToUser(tx, body.FormID, body.UserID)
		return errAssign
	})
	if errTx != nil {
		h.writeError(c, errTx, "assign form to user")
		return
	}
	respond.OK(c, fmt.Sprintf("Form %d assigned to user %d", body.FormID, body.UserID))
}

// RetractUser revokes a user's assignment.
func (h *AssignmentHandler) RetractUser(c *gin.Context) {
	var body userAssignmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.FormID == 0 || body.UserID == 0 {
		respond.Fail(c, http.StatusBadRequest, "formId and userId are required")
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return voting.RemoveFormFromUser(tx, body.FormID, body.UserID)
	})
	if errTx != nil {
		h.writeError(c, errTx, "remove form from user")
		return
	}
	respond.OK(c, fmt.Sprintf("Form %d removed from user %d", body.FormID, body.UserID))
}

// AssignGroup assigns a form to a group and fans it out to every member.
func (h *AssignmentHandler) AssignGroup(c *gin.Context) {
	var body groupAssignmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.FormID == 0 || body.GroupID == 0 {
		respond.Fail(c, http.StatusBadRequest, "formId and groupId are required")
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		_, errAssign := voting.AssignFormToGroup(tx, body.FormID, body.GroupID)
		return errAssign
	})
	if errTx != nil {
		h.writeError(c, errTx, "assign form to group")
		return
	}
	respond.OK(c, fmt.Sprintf("Form %d assigned to group %d", body.FormID, body.GroupID))
}

// RetractGroup retracts a group assignment including every member's row for
// that form.
func (h *AssignmentHandler) RetractGroup(c *gin.Context) {
	var body groupAssignmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.FormID == 0 || body.GroupID == 0 {
		respond.Fail(c, http.StatusBadRequest, "formId and groupId are required")
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return voting.RemoveFormFromGroup(tx, body.FormID, body.GroupID)
	})
	if errTx != nil {
		h.writeError(c, errTx, "remove form from group")
		return
	}
	respond.OK(c, fmt.Sprintf("Form %d removed from group %d", body.FormID, body.GroupID))
}

func (h *AssignmentHandler) writeError(c *gin.Context, errOp error, op string) {
	if voting.IsRejection(errOp) {
		respond.Fail(c, http.StatusBadRequest, errOp.Error())
		return
	}
	log.WithError(errOp).Errorf("%s failed", op)
	respond.Fail(c, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
}
