package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/proxyvote-app/proxyvote/internal/http/api"
	"github.com/proxyvote-app/proxyvote/internal/http/api/respond"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"github.com/proxyvote-app/proxyvote/internal/voting"
)

// FormHandler serves the voter-facing form and ballot endpoints.
type FormHandler struct {
	db *gorm.DB
}

// NewFormHandler constructs a FormHandler.
func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{db: db}
}

// formDTO shapes a form for voter responses.
type formDTO struct {
	ID        uint64        `json:"id"`
	Title     string        `json:"title"`
	Decisions []decisionDTO `json:"decisions"`
}

// decisionDTO shapes a decision option. Tallies are not exposed to voters.
type decisionDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// toFormDTOs maps forms into the response shape.
func toFormDTOs(forms []models.Form) []formDTO {
	out := make([]formDTO, 0, len(forms))
	for _, form := range forms {
		dto := formDTO{ID: form.ID, Title: form.Title, Decisions: make([]decisionDTO, 0, len(form.Decisions))}
		for _, decision := range form.Decisions {
			dto.Decisions = append(dto.Decisions, decisionDTO{ID: decision.ID, Title: decision.Title})
		}
		out = append(out, dto)
	}
	return out
}

// List returns every form assigned to the caller.
func (h *FormHandler) List(c *gin.Context) {
	h.listForms(c, false)
}

// ListUnvoted returns the caller's assigned forms without a cast ballot.
func (h *FormHandler) ListUnvoted(c *gin.Context) {
	h.listForms(c, true)
}

func (h *FormHandler) listForms(c *gin.Context, onlyUnvoted bool) {
	user, ok := api.CurrentUser(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, "No user found")
		return
	}

	var forms []models.Form
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		loaded, errLoad := voting.FormsForUser(tx, user.ID, onlyUnvoted)
		if errLoad != nil {
			return errLoad
		}
		forms = loaded
		return nil
	})
	if errTx != nil {
		log.WithError(errTx).Error("list forms failed")
		respond.Fail(c, http.StatusInternalServerError, "list forms failed")
		return
	}

	respond.OK(c, toFormDTOs(forms))
}

// Proxy returns the caller's current proxy amount.
func (h *FormHandler) Proxy(c *gin.Context) {
	user, ok := api.CurrentUser(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, "No user found")
		return
	}
	respond.OK(c, user.ProxyAmount)
}

// voteRequest defines the ballot body for PUT /forms/:formId.
type voteRequest struct {
	Decisions []voting.BallotEntry `json:"decisions"`
}

// Vote applies the caller's ballot to a form. The weight sum is checked
// here against the freshly loaded user before the engine checks it again
// inside the transaction.
func (h *FormHandler) Vote(c *gin.Context) {
	user, ok := api.CurrentUser(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, "No user found")
		return
	}

	formID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("formId")), 10, 64)
	if errParse != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid form id")
		return
	}

	var body voteRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(body.Decisions) == 0 {
		respond.Fail(c, http.StatusBadRequest, "No decisions in Body")
		return
	}
	var total int64
	for _, entry := range body.Decisions {
		if strings.TrimSpace(entry.Decision) == "" || entry.Amount < 0 {
			respond.Fail(c, http.StatusBadRequest, "invalid ballot entry")
			return
		}
		total += entry.Amount
	}
	if total != user.ProxyAmount {
		respond.Fail(c, http.StatusBadRequest, "Proxyamount does not equal votes casted")
		return
	}

	var decisions []models.Decision
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		applied, errVote := voting.Vote(tx, user.ID, formID, body.Decisions)
		if errVote != nil {
			return errVote
		}
		decisions = applied
		return nil
	})
	if errTx != nil {
		if voting.IsRejection(errTx) {
			respond.Fail(c, http.StatusBadRequest, errTx.Error())
			return
		}
		log.WithError(errTx).Error("vote failed")
		respond.Fail(c, http.StatusInternalServerError, "vote failed")
		return
	}

	out := make([]gin.H, 0, len(decisions))
	for _, decision := range decisions {
		out = append(out, gin.H{"id": decision.ID, "title": decision.Title, "votes": decision.Votes})
	}
	respond.OK(c, gin.H{
		"confirmation": fmt.Sprintf("Form %d vote success", formID),
		"decisions":    out,
	})
}
