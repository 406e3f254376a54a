package handlers

import (
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

// FormHandler manages forms and their decision options.
type FormHandler struct {
	db *gorm.DB
}

// NewFormHandler constructs a FormHandler.
func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{db: db}
}

// createFormRequest defines the POST /admin/forms body.
type createFormRequest struct {
	Title     string   `json:"title"`
	Decisions []string `json:"decisions"`
}

// Create registers a form with its decision options. At least two options
// are required so a ballot is an actual choice.
func (h *FormHandler) Create(c *gin.Context) {
	var body createFormRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		respond.Fail(c, http.StatusBadRequest, "title is required")
		return
	}
	decisions := make([]string, 0, len(body.Decisions))
	seen := make(map[string]bool, len(body.Decisions))
	for _, decision := range body.Decisions {
		decision = strings.TrimSpace(decision)
		if decision == "" {
			respond.Fail(c, http.StatusBadRequest, "empty decision title")
			return
		}
		if seen[decision] {
			respond.Fail(c, http.StatusBadRequest, "duplicate decision title")
			return
		}
		seen[decision] = true
		decisions = append(decisions, decision)
	}
	if len(decisions) < 2 {
		respond.Fail(c, http.StatusBadRequest, "a form needs at least two decisions")
		return
	}

	var form *models.Form
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		created, errCreate := voting.CreateForm(tx, title, decisions)
		if errCreate != nil {
			return errCreate
		}
		form = created
		return nil
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("create form failed")
		respond.Fail(c, http.StatusInternalServerError, "create form failed")
		return
	}

	out := make([]gin.H, 0, len(form.Decisions))
	for _, decision := range form.Decisions {
		out = append(out, gin.H{"id": decision.ID, "title": decision.Title})
	}
	respond.OK(c, gin.H{"id": form.ID, "title": form.Title, "decisions": out})
}

// List returns every form with tallies and assignment progress.
func (h *FormHandler) List(c *gin.Context) {
	var forms []models.Form
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Decisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("decisions.id ASC")
		}).
		Preload("UserForms").
		Order("id ASC").
		Find(&forms).Error
	if errFind != nil {
		log.WithError(errFind).Error("list forms failed")
		respond.Fail(c, http.StatusInternalServerError, "list forms failed")
		return
	}

	out := make([]gin.H, 0, len(forms))
	for _, form := range forms {
		decisions := make([]gin.H, 0, len(form.Decisions))
		for _, decision := range form.Decisions {
			decisions = append(decisions, gin.H{"id": decision.ID, "title": decision.Title, "votes": decision.Votes})
		}
		voted := 0
		for _, userForm := range form.UserForms {
			if userForm.HasVoted {
				voted++
			}
		}
		out = append(out, gin.H{
			"id":        form.ID,
			"title":     form.Title,
			"decisions": decisions,
			"assigned":  len(form.UserForms),
			"voted":     voted,
		})
	}
	respond.OK(c, out)
}

// Delete removes a form, its decisions, assignments, and ballot records.
func (h *FormHandler) Delete(c *gin.Context) {
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return voting.DeleteForm(tx, formID)
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("delete form failed")
		respond.Fail(c, http.StatusInternalServerError, "delete form failed")
		return
	}
	respond.OK(c, fmt.Sprintf("Form %d deleted", formID))
}
