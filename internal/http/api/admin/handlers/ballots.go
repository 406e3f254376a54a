package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
)

// BallotHandler exposes the ballot audit trail.
type BallotHandler struct {
	db *gorm.DB
}

// NewBallotHandler constructs a BallotHandler.
func NewBallotHandler(db *gorm.DB) *BallotHandler {
	return &BallotHandler{db: db}
}

// List returns ballot records, newest first, optionally filtered by formId
// or userId query parameters.
func (h *BallotHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.BallotRecord{})
	if raw := strings.TrimSpace(c.Query("formId")); raw != "" {
		formID, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			respond.Fail(c, http.StatusBadRequest, "invalid formId")
			return
		}
		query = query.Where("form_id = ?", formID)
	}
	if raw := strings.TrimSpace(c.Query("userId")); raw != "" {
		userID, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			respond.Fail(c, http.StatusBadRequest, "invalid userId")
			return
		}
		query = query.Where("user_id = ?", userID)
	}

	var records []models.BallotRecord
	if errFind := query.Order("id DESC").Find(&records).Error; errFind != nil {
		log.WithError(errFind).Error("list ballots failed")
		respond.Fail(c, http.StatusInternalServerError, "list ballots failed")
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, record := range records {
		out = append(out, gin.H{
			"id":        record.ID,
			"userId":    record.UserID,
			"formId":    record.FormID,
			"ballot":    record.Ballot,
			"createdAt": record.CreatedAt,
		})
	}
	respond.OK(c, out)
}
